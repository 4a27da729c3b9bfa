package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

// CreateEntryRequest represents a request to post a single entry.
type CreateEntryRequest struct {
	AccountID      int64  `json:"accountId" validate:"required,gt=0"`
	EntryType      string `json:"entryType" validate:"required,oneof=DEBIT CREDIT"`
	Amount         string `json:"amount" validate:"required"`
	Currency       string `json:"currency" validate:"required,len=3,alpha"`
	ReferenceType  string `json:"referenceType" validate:"required"`
	ReferenceID    string `json:"referenceId" validate:"required,max=100"`
	IdempotencyKey string `json:"idempotencyKey" validate:"required,max=512"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() (usecase.CreateEntryInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.CreateEntryInput{}, err
	}

	return usecase.CreateEntryInput{
		AccountID:      r.AccountID,
		EntryType:      domain.EntryType(r.EntryType),
		Amount:         amount,
		Currency:       domain.Currency(r.Currency),
		ReferenceType:  domain.ReferenceType(r.ReferenceType),
		ReferenceID:    r.ReferenceID,
		IdempotencyKey: r.IdempotencyKey,
	}, nil
}

// CompositeMovementRequest represents a request to move an amount between two accounts.
type CompositeMovementRequest struct {
	DebitAccountID  int64  `json:"debitAccountId" validate:"required,gt=0"`
	CreditAccountID int64  `json:"creditAccountId" validate:"required,gt=0,nefield=DebitAccountID"`
	Amount          string `json:"amount" validate:"required"`
	Currency        string `json:"currency" validate:"required,len=3,alpha"`
	ReferenceType   string `json:"referenceType" validate:"required"`
	ReferenceID     string `json:"referenceId" validate:"required,max=100"`
	IdempotencyKey  string `json:"idempotencyKey" validate:"required,max=512"`
}

// ToUseCaseInput converts to use case input.
func (r *CompositeMovementRequest) ToUseCaseInput() (usecase.CompositeMovementInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.CompositeMovementInput{}, err
	}

	return usecase.CompositeMovementInput{
		DebitAccountID:  r.DebitAccountID,
		CreditAccountID: r.CreditAccountID,
		Amount:          amount,
		Currency:        domain.Currency(r.Currency),
		ReferenceType:   domain.ReferenceType(r.ReferenceType),
		ReferenceID:     r.ReferenceID,
		IdempotencyKey:  r.IdempotencyKey,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal number", domain.ErrInvalidAmount, s)
	}
	return amount, nil
}
