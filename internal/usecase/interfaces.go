package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
)

// Repository methods that take a Transaction accept a nil one, in which case they read
// committed state outside any unit of work.

// OperationRepository defines data access for operations.
type OperationRepository interface {
	// FindByIdempotencyKey returns nil, nil when no operation uses the key.
	FindByIdempotencyKey(ctx context.Context, tx Transaction, key string) (*domain.Operation, error)
	// FindByID returns nil, nil when the operation does not exist.
	FindByID(ctx context.Context, tx Transaction, id uuid.UUID) (*domain.Operation, error)
	// Insert returns domain.ErrDuplicateIdempotencyKey when the key is already taken.
	Insert(ctx context.Context, tx Transaction, op *domain.Operation) error
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	FindByOperationID(ctx context.Context, tx Transaction, operationID uuid.UUID) ([]*domain.Entry, error)
	// FindByID returns nil, nil when the entry does not exist.
	FindByID(ctx context.Context, id string) (*domain.Entry, error)
	InsertAll(ctx context.Context, tx Transaction, entries []*domain.Entry) error
	// SumAmount sums the amounts of one entry type. A nil cutoff includes every entry.
	SumAmount(ctx context.Context, accountID int64, entryType domain.EntryType, cutoff *time.Time) (decimal.Decimal, error)
	// FindLatestByAccount returns nil, nil when no entry qualifies.
	FindLatestByAccount(ctx context.Context, accountID int64, cutoff *time.Time) (*domain.Entry, error)
	// ListByAccount orders by created_at DESC, id DESC.
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Entry, error)
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	CountOperationsWithoutEntries(ctx context.Context) (int64, error)
	TotalsByCurrency(ctx context.Context) ([]domain.CurrencyTotals, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	NewOperationID() uuid.UUID
	NewEntryID() string
}

// Retrier retries a unit of work on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles response replay for the Idempotency-Key header.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a pending key so the request can be retried.
	Release(ctx context.Context, key string) error
}
