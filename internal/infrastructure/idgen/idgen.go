package idgen

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator issues UUIDv7 operation IDs and ULID entry IDs.
// Both are time ordered, which keeps index inserts append-mostly.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewOperationID returns a new operation ID.
func (g *Generator) NewOperationID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewEntryID returns a new entry ID.
func (g *Generator) NewEntryID() string {
	return ulid.Make().String()
}
