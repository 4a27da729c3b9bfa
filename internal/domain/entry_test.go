package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestEntryTypeOpposite(t *testing.T) {
	if EntryTypeDebit.Opposite() != EntryTypeCredit {
		t.Fatalf("expected DEBIT to mirror to CREDIT")
	}
	if EntryTypeCredit.Opposite() != EntryTypeDebit {
		t.Fatalf("expected CREDIT to mirror to DEBIT")
	}
}

func TestEntryMirror(t *testing.T) {
	original := &Entry{
		ID:          "e1",
		AccountID:   1001,
		EntryType:   EntryTypeDebit,
		Amount:      decimal.RequireFromString("150.00"),
		Currency:    "PEN",
		OperationID: uuid.New(),
		CreatedAt:   time.Now().Add(-time.Hour),
	}

	opID := uuid.New()
	now := time.Now()
	mirrored := original.Mirror("e2", opID, now)

	if mirrored.EntryType != EntryTypeCredit {
		t.Errorf("expected CREDIT, got %s", mirrored.EntryType)
	}
	if mirrored.AccountID != original.AccountID || !mirrored.Amount.Equal(original.Amount) || mirrored.Currency != original.Currency {
		t.Errorf("expected account, amount and currency to be preserved, got %+v", mirrored)
	}
	if mirrored.OperationID != opID || mirrored.ID != "e2" || !mirrored.CreatedAt.Equal(now) {
		t.Errorf("expected new identity, got %+v", mirrored)
	}
	if original.EntryType != EntryTypeDebit {
		t.Errorf("original entry must not change")
	}
}

func TestEntrySignedAmount(t *testing.T) {
	debit := &Entry{EntryType: EntryTypeDebit, Amount: decimal.NewFromInt(10)}
	credit := &Entry{EntryType: EntryTypeCredit, Amount: decimal.NewFromInt(10)}

	if !debit.SignedAmount().Equal(decimal.NewFromInt(-10)) {
		t.Errorf("expected -10, got %s", debit.SignedAmount())
	}
	if !credit.SignedAmount().Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10, got %s", credit.SignedAmount())
	}
}

func TestOperationReference(t *testing.T) {
	op := &Operation{ID: uuid.New(), ReferenceType: ReferenceTypeDeposit, ReferenceID: "dep-1"}

	if !op.SameReference(ReferenceTypeDeposit, "dep-1") {
		t.Errorf("expected reference to match")
	}
	if op.SameReference(ReferenceTypeWithdrawal, "dep-1") || op.SameReference(ReferenceTypeDeposit, "dep-2") {
		t.Errorf("expected reference mismatch")
	}
	if op.IsReversal() {
		t.Errorf("plain operation must not be a reversal")
	}
	if got := ReversalKey(op.ID); got != "reversal:"+op.ID.String() {
		t.Errorf("unexpected reversal key %s", got)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{ErrSameAccount, ErrValidation},
		{ErrIdempotencyKeyReused, ErrConflict},
		{ErrEntryNotFound, ErrNotFound},
		{ErrOperationWithoutEntry, ErrInconsistentState},
		{errors.New("boom"), nil},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, 0, 2, 5)
	if p.TotalPages != 3 || p.TotalItems != 5 || len(p.Items) != 2 {
		t.Fatalf("unexpected page %+v", p)
	}

	empty := NewPage[int](nil, 4, 20, 0)
	if empty.Items == nil || empty.TotalPages != 0 {
		t.Fatalf("expected empty non-nil page, got %+v", empty)
	}
}
