package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultOperationCacheTTL is how long operation lookups stay cached
	DefaultOperationCacheTTL = 10 * time.Minute

	// IdempotencyKeyTTL is how long Idempotency-Key header responses are kept
	IdempotencyKeyTTL = 24 * time.Hour
)
