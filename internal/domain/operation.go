package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReversalKeyPrefix prefixes the idempotency key derived for reversal operations.
const ReversalKeyPrefix = "reversal:"

// ReferenceType classifies the business event an operation records.
type ReferenceType string

const (
	ReferenceTypeDeposit    ReferenceType = "DEPOSIT"
	ReferenceTypeWithdrawal ReferenceType = "WITHDRAWAL"
	ReferenceTypeTransfer   ReferenceType = "TRANSFER"
	ReferenceTypePayment    ReferenceType = "PAYMENT"
	ReferenceTypeFee        ReferenceType = "FEE"
	ReferenceTypeAdjustment ReferenceType = "ADJUSTMENT"
)

// IsValid reports whether t is a known reference type.
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypeDeposit, ReferenceTypeWithdrawal, ReferenceTypeTransfer,
		ReferenceTypePayment, ReferenceTypeFee, ReferenceTypeAdjustment:
		return true
	}
	return false
}

// Operation is a business event. It owns the entries posted for it and never changes
// after creation.
type Operation struct {
	CreatedAt      time.Time
	ReversalOfID   *uuid.UUID
	IdempotencyKey string
	ReferenceType  ReferenceType
	ReferenceID    string
	ID             uuid.UUID
}

// SameReference reports whether the operation is bound to the given reference pair.
func (o *Operation) SameReference(referenceType ReferenceType, referenceID string) bool {
	return o.ReferenceType == referenceType && o.ReferenceID == referenceID
}

// IsReversal reports whether the operation reverses another operation.
func (o *Operation) IsReversal() bool {
	return o.ReversalOfID != nil
}

// ReversalKey returns the idempotency key used for the reversal of operationID.
func ReversalKey(operationID uuid.UUID) string {
	return ReversalKeyPrefix + operationID.String()
}
