package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/postgres/generated"
	"github.com/banca/opledger/internal/usecase"
)

const (
	pgErrUniqueViolation = "23505"

	idempotencyKeyConstraint = "uq_ledger_operations_idempotency_key"
	reversalOfConstraint     = "uq_ledger_operations_reversal_of_id"
)

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	pool Pool
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(pool Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// FindByIdempotencyKey retrieves an operation by its idempotency key.
func (r *OperationRepository) FindByIdempotencyKey(ctx context.Context, tx usecase.Transaction, key string) (*domain.Operation, error) {
	queries, err := queriesFor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetOperationByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToOperation(row), nil
}

// FindByID retrieves an operation by ID.
func (r *OperationRepository) FindByID(ctx context.Context, tx usecase.Transaction, id uuid.UUID) (*domain.Operation, error) {
	queries, err := queriesFor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetOperationByID(ctx, uuidToPg(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToOperation(row), nil
}

// Insert creates a new operation. A lost race on the idempotency key surfaces as
// domain.ErrDuplicateIdempotencyKey without aborting the surrounding transaction.
func (r *OperationRepository) Insert(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	if tx == nil {
		return fmt.Errorf("postgres: operation insert requires a transaction")
	}

	queries, err := queriesFor(r.pool, tx)
	if err != nil {
		return err
	}

	_, err = queries.InsertOperation(ctx, generated.InsertOperationParams{
		ID:             uuidToPg(op.ID),
		IdempotencyKey: op.IdempotencyKey,
		ReferenceType:  string(op.ReferenceType),
		ReferenceID:    op.ReferenceID,
		ReversalOfID:   optionalUUIDToPg(op.ReversalOfID),
		CreatedAt:      timeToPgTimestamptz(op.CreatedAt),
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateIdempotencyKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		switch pgErr.ConstraintName {
		case reversalOfConstraint:
			return fmt.Errorf("%w: operation %s is already reversed", domain.ErrConflict, op.ReversalOfID)
		case idempotencyKeyConstraint, "":
			return domain.ErrDuplicateIdempotencyKey
		}
	}

	return err
}
