package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of a posting.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// IsValid reports whether t is DEBIT or CREDIT.
func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// Opposite returns the mirrored direction.
func (t EntryType) Opposite() EntryType {
	if t == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// Entry is an immutable single-account posting belonging to one operation.
type Entry struct {
	CreatedAt   time.Time
	Amount      decimal.Decimal
	ID          string
	EntryType   EntryType
	Currency    Currency
	AccountID   int64
	OperationID uuid.UUID
}

// Mirror returns a copy of the entry with its direction flipped, bound to another operation.
func (e *Entry) Mirror(id string, operationID uuid.UUID, createdAt time.Time) *Entry {
	return &Entry{
		ID:          id,
		AccountID:   e.AccountID,
		EntryType:   e.EntryType.Opposite(),
		Amount:      e.Amount,
		Currency:    e.Currency,
		OperationID: operationID,
		CreatedAt:   createdAt,
	}
}

// SignedAmount returns the entry's contribution to its account balance.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.EntryType == EntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
