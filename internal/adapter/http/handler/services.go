package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

// LedgerCommands defines the write side needed by the handlers.
type LedgerCommands interface {
	CreateSingleEntry(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error)
	RecordCompositeMovement(ctx context.Context, input usecase.CompositeMovementInput) (*usecase.OperationResult, error)
	ReverseOperation(ctx context.Context, operationID uuid.UUID) (*usecase.OperationResult, error)
}

// LedgerQueries defines the read side needed by the handlers.
type LedgerQueries interface {
	GetAccountBalance(ctx context.Context, accountID int64) (*domain.AccountBalance, error)
	GetAccountBalanceUpToDate(ctx context.Context, accountID int64, cutoff time.Time) (*domain.AccountBalance, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) (domain.Page[*domain.Entry], error)
	GetEntryDetail(ctx context.Context, entryID string) (*domain.EntryDetail, error)
	GetOperationEntries(ctx context.Context, operationID uuid.UUID) (*domain.OperationEntries, error)
	GetOperationEntriesByIdempotencyKey(ctx context.Context, key string) (*domain.OperationEntries, error)
}

// IntegrityChecker defines the ledger-wide check needed by LedgerHandler.
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context) (*domain.IntegrityReport, error)
}
