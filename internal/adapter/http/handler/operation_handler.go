package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banca/opledger/internal/adapter/http/dto"
)

// OperationHandler handles operation lookups and reversals.
type OperationHandler struct {
	commands LedgerCommands
	queries  LedgerQueries
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(commands LedgerCommands, queries LedgerQueries) *OperationHandler {
	return &OperationHandler{commands: commands, queries: queries}
}

// Get returns an operation and its entries by id.
func (h *OperationHandler) Get(w http.ResponseWriter, r *http.Request) {
	operationID, err := parseOperationID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.queries.GetOperationEntries(r.Context(), operationID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationEntriesFromDomain(result.Operation, result.Entries, false))
}

// GetByIdempotencyKey returns an operation and its entries by idempotency key.
func (h *OperationHandler) GetByIdempotencyKey(w http.ResponseWriter, r *http.Request) {
	result, err := h.queries.GetOperationEntriesByIdempotencyKey(r.Context(), chi.URLParam(r, "idempotencyKey"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationEntriesFromDomain(result.Operation, result.Entries, false))
}

// Reverse posts the mirror of an operation.
func (h *OperationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	operationID, err := parseOperationID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.commands.ReverseOperation(r.Context(), operationID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, createdOrReplayed(result.Replayed), dto.OperationEntriesFromDomain(result.Operation, result.Entries, result.Replayed))
}
