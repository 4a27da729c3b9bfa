package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	AmountScale             = 4
	MaxIdempotencyKeyLength = 512
	MaxReferenceIDLength    = 100
	MinPageSize             = 1
	MaxPageSize             = 100
	DefaultPageSize         = 20
)

// maxAmount is the first value that does not fit NUMERIC(19,4).
var maxAmount = decimal.New(1, 19-AmountScale)

// ValidateAmount validates a posting amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmountScale, AmountScale)
	}

	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: must be below %s", ErrAmountTooLarge, maxAmount.String())
	}

	return nil
}

// ValidateAccountID validates an account identifier.
func ValidateAccountID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAccountID, id)
	}
	return nil
}

// ValidateEntryType validates a posting direction.
func ValidateEntryType(t EntryType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntryType, t)
	}
	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(c Currency) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: %q is not supported", ErrInvalidCurrency, c)
	}
	return nil
}

// ValidateReference validates the business reference of an operation.
func ValidateReference(referenceType ReferenceType, referenceID string) error {
	if !referenceType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidReferenceType, referenceType)
	}

	if strings.TrimSpace(referenceID) == "" {
		return fmt.Errorf("%w: cannot be blank", ErrInvalidReferenceID)
	}

	if utf8.RuneCountInString(referenceID) > MaxReferenceIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidReferenceID, MaxReferenceIDLength)
	}

	return nil
}

// ValidateIdempotencyKey validates a caller supplied idempotency key.
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: cannot be blank", ErrInvalidIdempotencyKey)
	}

	if utf8.RuneCountInString(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidatePagination validates a zero based page number and a page size.
func ValidatePagination(page, pageSize int) error {
	if page < 0 {
		return fmt.Errorf("%w: page must be >= 0, got %d", ErrInvalidPagination, page)
	}

	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between %d and %d, got %d",
			ErrInvalidPagination, MinPageSize, MaxPageSize, pageSize)
	}

	// The row offset must fit the storage OFFSET (int32).
	if page > math.MaxInt32/pageSize {
		return fmt.Errorf("%w: page %d is out of range for page size %d", ErrInvalidPagination, page, pageSize)
	}

	return nil
}
