package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/banca/opledger/internal/adapter/http/dto"
	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

func TestOperationHandler_Get_InvalidID(t *testing.T) {
	h := NewOperationHandler(&commandsStub{}, &queriesStub{})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"operationId": "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOperationHandler_GetByIdempotencyKey(t *testing.T) {
	opID := uuid.New()
	h := NewOperationHandler(&commandsStub{}, &queriesStub{
		opByKeyFn: func(ctx context.Context, key string) (*domain.OperationEntries, error) {
			return &domain.OperationEntries{
				Operation: &domain.Operation{ID: opID, IdempotencyKey: key},
				Entries:   []*domain.Entry{{ID: "e1", OperationID: opID}},
			}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"idempotencyKey": "comp-1"})
	rec := httptest.NewRecorder()
	h.GetByIdempotencyKey(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.OperationEntriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Operation.IdempotencyKey != "comp-1" || len(resp.Entries) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestOperationHandler_Reverse(t *testing.T) {
	original := uuid.New()
	reversal := uuid.New()

	tests := []struct {
		name       string
		result     *usecase.OperationResult
		err        error
		wantStatus int
	}{
		{
			name:       "created",
			result:     &usecase.OperationResult{Operation: &domain.Operation{ID: reversal, ReversalOfID: &original}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "replayed",
			result:     &usecase.OperationResult{Operation: &domain.Operation{ID: reversal, ReversalOfID: &original}, Replayed: true},
			wantStatus: http.StatusOK,
		},
		{name: "not found", err: domain.ErrOperationNotFound, wantStatus: http.StatusNotFound},
		{name: "reversal of reversal", err: domain.ErrOperationIsReversal, wantStatus: http.StatusConflict},
		{name: "without entries", err: domain.ErrOperationWithoutEntry, wantStatus: http.StatusInternalServerError},
		{name: "storage failure", err: errors.New("connection refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOperationHandler(&commandsStub{
				reverseFn: func(ctx context.Context, id uuid.UUID) (*usecase.OperationResult, error) {
					if id != original {
						t.Fatalf("unexpected id %s", id)
					}
					return tt.result, tt.err
				},
			}, &queriesStub{})

			req := withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"operationId": original.String()})
			rec := httptest.NewRecorder()
			h.Reverse(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
