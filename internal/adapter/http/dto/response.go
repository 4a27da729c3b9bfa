package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/banca/opledger/internal/domain"
)

// OperationResponse represents an operation in API responses.
type OperationResponse struct {
	ID             uuid.UUID  `json:"id"`
	IdempotencyKey string     `json:"idempotencyKey"`
	ReferenceType  string     `json:"referenceType"`
	ReferenceID    string     `json:"referenceId"`
	ReversalOfID   *uuid.UUID `json:"reversalOfId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// OperationFromDomain converts a domain operation to a response.
func OperationFromDomain(op *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:             op.ID,
		IdempotencyKey: op.IdempotencyKey,
		ReferenceType:  string(op.ReferenceType),
		ReferenceID:    op.ReferenceID,
		ReversalOfID:   op.ReversalOfID,
		CreatedAt:      op.CreatedAt,
	}
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID          string    `json:"id"`
	AccountID   int64     `json:"accountId"`
	EntryType   string    `json:"entryType"`
	Amount      Amount    `json:"amount"`
	Currency    string    `json:"currency"`
	OperationID uuid.UUID `json:"operationId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		EntryType:   string(e.EntryType),
		Amount:      NewAmount(e.Amount),
		Currency:    string(e.Currency),
		OperationID: e.OperationID,
		CreatedAt:   e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntryPostedResponse is returned for a single entry posting.
type EntryPostedResponse struct {
	Operation *OperationResponse `json:"operation"`
	Entry     *EntryResponse     `json:"entry"`
	Replayed  bool               `json:"replayed"`
}

// OperationEntriesResponse pairs an operation with its entries.
type OperationEntriesResponse struct {
	Operation *OperationResponse `json:"operation"`
	Entries   []*EntryResponse   `json:"entries"`
	Replayed  bool               `json:"replayed,omitempty"`
}

// OperationEntriesFromDomain converts an operation and its entries to a response.
func OperationEntriesFromDomain(op *domain.Operation, entries []*domain.Entry, replayed bool) *OperationEntriesResponse {
	return &OperationEntriesResponse{
		Operation: OperationFromDomain(op),
		Entries:   EntriesFromDomain(entries),
		Replayed:  replayed,
	}
}

// EntryDetailResponse represents an entry with its owning operation.
type EntryDetailResponse struct {
	Entry     *EntryResponse     `json:"entry"`
	Operation *OperationResponse `json:"operation"`
}

// EntryDetailFromDomain converts an entry detail to a response.
func EntryDetailFromDomain(d *domain.EntryDetail) *EntryDetailResponse {
	return &EntryDetailResponse{
		Entry:     EntryFromDomain(d.Entry),
		Operation: OperationFromDomain(d.Operation),
	}
}

// BalanceResponse represents an account balance. Currency is absent when no entry qualified.
type BalanceResponse struct {
	AccountID int64      `json:"accountId"`
	Balance   Amount     `json:"balance"`
	Currency  *string    `json:"currency"`
	AsOf      *time.Time `json:"asOf,omitempty"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b *domain.AccountBalance) *BalanceResponse {
	resp := &BalanceResponse{
		AccountID: b.AccountID,
		Balance:   NewAmount(b.Balance),
		AsOf:      b.AsOf,
	}
	if b.Currency != nil {
		currency := string(*b.Currency)
		resp.Currency = &currency
	}
	return resp
}

// EntryPageResponse is one page of an account's entries.
type EntryPageResponse struct {
	Items      []*EntryResponse `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int64            `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

// EntryPageFromDomain converts a page of entries to a response.
func EntryPageFromDomain(p domain.Page[*domain.Entry]) *EntryPageResponse {
	return &EntryPageResponse{
		Items:      EntriesFromDomain(p.Items),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// CurrencyTotalsResponse reports debit and credit totals for one currency.
type CurrencyTotalsResponse struct {
	Currency string `json:"currency"`
	Debits   Amount `json:"debits"`
	Credits  Amount `json:"credits"`
}

// IntegrityResponse represents a ledger integrity report.
type IntegrityResponse struct {
	Healthy                  bool                      `json:"healthy"`
	OperationsWithoutEntries int64                     `json:"operationsWithoutEntries"`
	Totals                   []*CurrencyTotalsResponse `json:"totals"`
	CheckedAt                time.Time                 `json:"checkedAt"`
}

// IntegrityFromDomain converts an integrity report to a response.
func IntegrityFromDomain(r *domain.IntegrityReport) *IntegrityResponse {
	totals := make([]*CurrencyTotalsResponse, len(r.Totals))
	for i, t := range r.Totals {
		totals[i] = &CurrencyTotalsResponse{
			Currency: string(t.Currency),
			Debits:   NewAmount(t.Debits),
			Credits:  NewAmount(t.Credits),
		}
	}

	return &IntegrityResponse{
		Healthy:                  r.Healthy(),
		OperationsWithoutEntries: r.OperationsWithoutEntries,
		Totals:                   totals,
		CheckedAt:                r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
