package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

type commandsStub struct {
	createFn    func(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error)
	compositeFn func(ctx context.Context, input usecase.CompositeMovementInput) (*usecase.OperationResult, error)
	reverseFn   func(ctx context.Context, id uuid.UUID) (*usecase.OperationResult, error)
}

func (s *commandsStub) CreateSingleEntry(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error) {
	return s.createFn(ctx, input)
}

func (s *commandsStub) RecordCompositeMovement(ctx context.Context, input usecase.CompositeMovementInput) (*usecase.OperationResult, error) {
	return s.compositeFn(ctx, input)
}

func (s *commandsStub) ReverseOperation(ctx context.Context, id uuid.UUID) (*usecase.OperationResult, error) {
	return s.reverseFn(ctx, id)
}

type queriesStub struct {
	balanceFn   func(ctx context.Context, accountID int64) (*domain.AccountBalance, error)
	balanceAtFn func(ctx context.Context, accountID int64, cutoff time.Time) (*domain.AccountBalance, error)
	listFn      func(ctx context.Context, input usecase.ListEntriesInput) (domain.Page[*domain.Entry], error)
	detailFn    func(ctx context.Context, id string) (*domain.EntryDetail, error)
	opFn        func(ctx context.Context, id uuid.UUID) (*domain.OperationEntries, error)
	opByKeyFn   func(ctx context.Context, key string) (*domain.OperationEntries, error)
}

func (s *queriesStub) GetAccountBalance(ctx context.Context, accountID int64) (*domain.AccountBalance, error) {
	return s.balanceFn(ctx, accountID)
}

func (s *queriesStub) GetAccountBalanceUpToDate(ctx context.Context, accountID int64, cutoff time.Time) (*domain.AccountBalance, error) {
	return s.balanceAtFn(ctx, accountID, cutoff)
}

func (s *queriesStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) (domain.Page[*domain.Entry], error) {
	return s.listFn(ctx, input)
}

func (s *queriesStub) GetEntryDetail(ctx context.Context, id string) (*domain.EntryDetail, error) {
	return s.detailFn(ctx, id)
}

func (s *queriesStub) GetOperationEntries(ctx context.Context, id uuid.UUID) (*domain.OperationEntries, error) {
	return s.opFn(ctx, id)
}

func (s *queriesStub) GetOperationEntriesByIdempotencyKey(ctx context.Context, key string) (*domain.OperationEntries, error) {
	return s.opByKeyFn(ctx, key)
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
