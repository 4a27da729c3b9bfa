package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is a balance derived from the entries of one account.
// Currency is nil when no entry contributed to the balance.
type AccountBalance struct {
	AsOf      *time.Time
	Currency  *Currency
	Balance   decimal.Decimal
	AccountID int64
}

// OperationEntries is an operation together with its full entry set.
type OperationEntries struct {
	Operation *Operation
	Entries   []*Entry
}

// EntryDetail is an entry with its owning operation resolved.
type EntryDetail struct {
	Entry     *Entry
	Operation *Operation
}

// Page is one page of an ordered listing.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// NewPage builds a page and derives the page count from the total.
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// CurrencyTotals are the ledger-wide DEBIT and CREDIT sums for one currency.
type CurrencyTotals struct {
	Currency Currency
	Debits   decimal.Decimal
	Credits  decimal.Decimal
}

// IntegrityReport summarizes ledger-wide structural checks.
type IntegrityReport struct {
	CheckedAt                time.Time
	Totals                   []CurrencyTotals
	OperationsWithoutEntries int64
}

// Healthy reports whether no structural violation was found.
func (r *IntegrityReport) Healthy() bool {
	return r.OperationsWithoutEntries == 0
}
