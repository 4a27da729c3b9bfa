package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the ledger core wraps exactly one of these,
// so callers classify failures with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrInconsistentState = errors.New("inconsistent ledger state")
)

var (
	// Validation errors
	ErrInvalidAmount         = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidAmountScale    = fmt.Errorf("%w: amount has too many fractional digits", ErrValidation)
	ErrAmountTooLarge        = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrInvalidAccountID      = fmt.Errorf("%w: account id must be positive", ErrValidation)
	ErrSameAccount           = fmt.Errorf("%w: debit and credit accounts must differ", ErrValidation)
	ErrInvalidEntryType      = fmt.Errorf("%w: invalid entry type", ErrValidation)
	ErrInvalidCurrency       = fmt.Errorf("%w: invalid currency code", ErrValidation)
	ErrInvalidReferenceType  = fmt.Errorf("%w: invalid reference type", ErrValidation)
	ErrInvalidReferenceID    = fmt.Errorf("%w: invalid reference id", ErrValidation)
	ErrInvalidIdempotencyKey = fmt.Errorf("%w: invalid idempotency key", ErrValidation)
	ErrInvalidIDFormat       = fmt.Errorf("%w: invalid id format", ErrValidation)
	ErrInvalidPagination     = fmt.Errorf("%w: invalid pagination", ErrValidation)

	// Conflict errors
	ErrIdempotencyKeyReused = fmt.Errorf("%w: idempotency key already used for a different reference", ErrConflict)
	ErrOperationIsReversal  = fmt.Errorf("%w: operation is itself a reversal", ErrConflict)

	// Not found errors
	ErrOperationNotFound = fmt.Errorf("%w: operation", ErrNotFound)
	ErrEntryNotFound     = fmt.Errorf("%w: entry", ErrNotFound)
	ErrAccountNotFound   = fmt.Errorf("%w: account has no entries", ErrNotFound)

	// Inconsistent state errors
	ErrUnexpectedEntryCount  = fmt.Errorf("%w: unexpected entry count for operation", ErrInconsistentState)
	ErrOperationWithoutEntry = fmt.Errorf("%w: operation has no entries", ErrInconsistentState)
	ErrOperationVanished     = fmt.Errorf("%w: operation missing after idempotency key conflict", ErrInconsistentState)
	ErrOrphanEntry           = fmt.Errorf("%w: entry references a missing operation", ErrInconsistentState)
)

// ErrDuplicateIdempotencyKey is returned by stores when an insert loses the race on the
// idempotency key uniqueness constraint. It never reaches callers of the ledger core.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// Kind returns the root error kind of err, or nil if err does not wrap any of them.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrInconsistentState} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
