package handler

import (
	"net/http"

	"github.com/banca/opledger/internal/adapter/http/dto"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	checker IntegrityChecker
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(checker IntegrityChecker) *LedgerHandler {
	return &LedgerHandler{checker: checker}
}

// Integrity reports structural violations. An unhealthy ledger answers 409.
func (h *LedgerHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.CheckIntegrity(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.IntegrityFromDomain(report))
}
