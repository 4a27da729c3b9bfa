package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/banca/opledger/internal/adapter/http/dto"
	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

// AccountHandler serves balances and entry listings per account.
type AccountHandler struct {
	queries LedgerQueries
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(queries LedgerQueries) *AccountHandler {
	return &AccountHandler{queries: queries}
}

// Balance returns the current balance of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	balance, err := h.queries.GetAccountBalance(r.Context(), accountID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// BalanceHistory returns the balance of an account as of the upToDate query parameter.
func (h *AccountHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	raw := r.URL.Query().Get("upToDate")
	if raw == "" {
		respondError(w, r, fmt.Errorf("%w: upToDate is required", domain.ErrValidation))
		return
	}

	cutoff, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: upToDate must be RFC3339", domain.ErrValidation))
		return
	}

	balance, err := h.queries.GetAccountBalanceUpToDate(r.Context(), accountID, cutoff)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// ListEntries lists an account's entries, newest first.
func (h *AccountHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	page, err := parseIntQuery(r, "page", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	size, err := parseIntQuery(r, "size", domain.DefaultPageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.queries.ListEntries(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryPageFromDomain(result))
}
