package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/metrics"
)

// OperationRequest describes the operation a command needs.
type OperationRequest struct {
	ReversalOfID   *uuid.UUID
	IdempotencyKey string
	ReferenceType  domain.ReferenceType
	ReferenceID    string
}

// IdempotencyResolver obtains or creates the operation bound to an idempotency key.
//
// Races between concurrent creators are settled by the store's uniqueness constraint:
// the loser's insert fails and it re-reads the winner's operation once. No lock is taken.
type IdempotencyResolver struct {
	operationRepo OperationRepository
	idGen         IDGenerator
	now           Clock
	metrics       *metrics.Metrics
}

// NewIdempotencyResolver creates a new IdempotencyResolver.
func NewIdempotencyResolver(operationRepo OperationRepository, idGen IDGenerator) *IdempotencyResolver {
	return &IdempotencyResolver{
		operationRepo: operationRepo,
		idGen:         idGen,
		now:           SystemClock,
	}
}

// Resolve returns the operation for req.IdempotencyKey, creating it inside tx when absent.
// created is true only when this call inserted the operation.
func (r *IdempotencyResolver) Resolve(ctx context.Context, tx Transaction, req OperationRequest) (op *domain.Operation, created bool, err error) {
	existing, err := r.operationRepo.FindByIdempotencyKey(ctx, tx, req.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		op, err := r.ensureSameReference(existing, req)
		return op, false, err
	}

	op = &domain.Operation{
		ID:             r.idGen.NewOperationID(),
		IdempotencyKey: req.IdempotencyKey,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		ReversalOfID:   req.ReversalOfID,
		CreatedAt:      r.now(),
	}

	err = r.operationRepo.Insert(ctx, tx, op)
	if err == nil {
		return op, true, nil
	}

	if !errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		return nil, false, err
	}

	if r.metrics != nil {
		r.metrics.IdempotencyRaces.Inc()
	}

	winner, err := r.operationRepo.FindByIdempotencyKey(ctx, tx, req.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}

	if winner == nil {
		return nil, false, fmt.Errorf("%w: key %q", domain.ErrOperationVanished, req.IdempotencyKey)
	}

	op, err = r.ensureSameReference(winner, req)
	return op, false, err
}

func (r *IdempotencyResolver) ensureSameReference(op *domain.Operation, req OperationRequest) (*domain.Operation, error) {
	if op.SameReference(req.ReferenceType, req.ReferenceID) && sameReversalTarget(op.ReversalOfID, req.ReversalOfID) {
		return op, nil
	}

	if r.metrics != nil {
		r.metrics.IdempotencyConflicts.Inc()
	}

	return nil, fmt.Errorf("%w: key %q is bound to %s/%s",
		domain.ErrIdempotencyKeyReused, req.IdempotencyKey, op.ReferenceType, op.ReferenceID)
}

func sameReversalTarget(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
