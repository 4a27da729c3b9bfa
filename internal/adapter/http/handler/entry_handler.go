package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/banca/opledger/internal/adapter/http/dto"
)

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	commands LedgerCommands
	queries  LedgerQueries
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(commands LedgerCommands, queries LedgerQueries) *EntryHandler {
	return &EntryHandler{commands: commands, queries: queries}
}

// Create posts a single entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.commands.CreateSingleEntry(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, createdOrReplayed(result.Replayed), &dto.EntryPostedResponse{
		Operation: dto.OperationFromDomain(result.Operation),
		Entry:     dto.EntryFromDomain(result.Entry),
		Replayed:  result.Replayed,
	})
}

// CreateComposite posts a debit and a credit under one operation.
func (h *EntryHandler) CreateComposite(w http.ResponseWriter, r *http.Request) {
	var req dto.CompositeMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.commands.RecordCompositeMovement(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, createdOrReplayed(result.Replayed), dto.OperationEntriesFromDomain(result.Operation, result.Entries, result.Replayed))
}

// Get retrieves an entry with its operation.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.queries.GetEntryDetail(r.Context(), chi.URLParam(r, "entryId"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryDetailFromDomain(detail))
}
