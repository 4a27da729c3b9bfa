package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

func TestGeneratorOperationIDs(t *testing.T) {
	g := New()

	a, b := g.NewOperationID(), g.NewOperationID()
	if a == uuid.Nil || a == b {
		t.Fatalf("expected distinct non-nil IDs, got %s and %s", a, b)
	}
	if a.Version() != 7 {
		t.Fatalf("expected version 7, got %d", a.Version())
	}
}

func TestGeneratorEntryIDsAreSortable(t *testing.T) {
	g := New()

	prev := g.NewEntryID()
	for i := 0; i < 100; i++ {
		next := g.NewEntryID()
		if _, err := ulid.ParseStrict(next); err != nil {
			t.Fatalf("invalid ULID %q: %v", next, err)
		}
		if next <= prev {
			t.Fatalf("expected increasing IDs, got %s after %s", next, prev)
		}
		prev = next
	}
}
