package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/metrics"
)

const (
	commandSingleEntry       = "single_entry"
	commandCompositeMovement = "composite_movement"
	commandReversal          = "reversal"
)

// LedgerCommandUseCase posts entries, composite movements and reversals.
type LedgerCommandUseCase struct {
	txManager     TransactionManager
	operationRepo OperationRepository
	entryRepo     EntryRepository
	idGen         IDGenerator
	resolver      *IdempotencyResolver
	retrier       Retrier
	metrics       *metrics.Metrics
	now           Clock
}

// NewLedgerCommandUseCase creates a new LedgerCommandUseCase.
func NewLedgerCommandUseCase(
	txManager TransactionManager,
	operationRepo OperationRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
) *LedgerCommandUseCase {
	return &LedgerCommandUseCase{
		txManager:     txManager,
		operationRepo: operationRepo,
		entryRepo:     entryRepo,
		idGen:         idGen,
		resolver:      NewIdempotencyResolver(operationRepo, idGen),
		now:           SystemClock,
	}
}

// WithRetrier retries whole units of work on transient storage failures.
func (uc *LedgerCommandUseCase) WithRetrier(r Retrier) *LedgerCommandUseCase {
	uc.retrier = r
	return uc
}

// WithMetrics enables command metrics.
func (uc *LedgerCommandUseCase) WithMetrics(m *metrics.Metrics) *LedgerCommandUseCase {
	uc.metrics = m
	uc.resolver.metrics = m
	return uc
}

// WithClock overrides the clock used for creation timestamps.
func (uc *LedgerCommandUseCase) WithClock(now Clock) *LedgerCommandUseCase {
	uc.now = now
	uc.resolver.now = now
	return uc
}

// CreateEntryInput represents input for posting a single entry.
type CreateEntryInput struct {
	Amount         decimal.Decimal
	IdempotencyKey string
	ReferenceType  domain.ReferenceType
	ReferenceID    string
	EntryType      domain.EntryType
	Currency       domain.Currency
	AccountID      int64
}

// Validate checks the input before any store access.
func (in CreateEntryInput) Validate() error {
	return errors.Join(
		domain.ValidateAccountID(in.AccountID),
		domain.ValidateEntryType(in.EntryType),
		domain.ValidateAmount(in.Amount),
		domain.ValidateCurrency(in.Currency),
		domain.ValidateReference(in.ReferenceType, in.ReferenceID),
		domain.ValidateIdempotencyKey(in.IdempotencyKey),
	)
}

// CompositeMovementInput represents input for a two-leg movement.
type CompositeMovementInput struct {
	Amount          decimal.Decimal
	IdempotencyKey  string
	ReferenceType   domain.ReferenceType
	ReferenceID     string
	Currency        domain.Currency
	DebitAccountID  int64
	CreditAccountID int64
}

// Validate checks the input before any store access.
func (in CompositeMovementInput) Validate() error {
	err := errors.Join(
		domain.ValidateAccountID(in.DebitAccountID),
		domain.ValidateAccountID(in.CreditAccountID),
		domain.ValidateAmount(in.Amount),
		domain.ValidateCurrency(in.Currency),
		domain.ValidateReference(in.ReferenceType, in.ReferenceID),
		domain.ValidateIdempotencyKey(in.IdempotencyKey),
	)
	if err != nil {
		return err
	}

	if in.DebitAccountID == in.CreditAccountID {
		return fmt.Errorf("%w: account %d", domain.ErrSameAccount, in.DebitAccountID)
	}

	return nil
}

// EntryResult is the outcome of a single entry posting.
type EntryResult struct {
	Operation *domain.Operation
	Entry     *domain.Entry
	Replayed  bool
}

// OperationResult is the outcome of a multi-entry command.
type OperationResult struct {
	Operation *domain.Operation
	Entries   []*domain.Entry
	Replayed  bool
}

// CreateSingleEntry posts one entry under the operation bound to the idempotency key.
// Repeating the call with the same key returns the entry posted the first time.
func (uc *LedgerCommandUseCase) CreateSingleEntry(ctx context.Context, input CreateEntryInput) (*EntryResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *EntryResult

	err := uc.execute(ctx, commandSingleEntry, func(ctx context.Context, tx Transaction) (bool, error) {
		op, _, err := uc.resolver.Resolve(ctx, tx, OperationRequest{
			IdempotencyKey: input.IdempotencyKey,
			ReferenceType:  input.ReferenceType,
			ReferenceID:    input.ReferenceID,
		})
		if err != nil {
			return false, err
		}

		existing, err := uc.entryRepo.FindByOperationID(ctx, tx, op.ID)
		if err != nil {
			return false, err
		}

		switch len(existing) {
		case 0:
			entry := &domain.Entry{
				ID:          uc.idGen.NewEntryID(),
				AccountID:   input.AccountID,
				EntryType:   input.EntryType,
				Amount:      input.Amount,
				Currency:    input.Currency,
				OperationID: op.ID,
				CreatedAt:   uc.now(),
			}

			if err := uc.entryRepo.InsertAll(ctx, tx, []*domain.Entry{entry}); err != nil {
				return false, err
			}

			result = &EntryResult{Operation: op, Entry: entry}
			return false, nil
		case 1:
			result = &EntryResult{Operation: op, Entry: existing[0], Replayed: true}
			return true, nil
		default:
			return false, fmt.Errorf("%w: operation %s has %d entries, expected 1",
				domain.ErrUnexpectedEntryCount, op.ID, len(existing))
		}
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		uc.countPosted(result.Entry)
	}

	return result, nil
}

// RecordCompositeMovement posts a DEBIT and a CREDIT of the same amount on two accounts.
func (uc *LedgerCommandUseCase) RecordCompositeMovement(ctx context.Context, input CompositeMovementInput) (*OperationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var result *OperationResult

	err := uc.execute(ctx, commandCompositeMovement, func(ctx context.Context, tx Transaction) (bool, error) {
		op, _, err := uc.resolver.Resolve(ctx, tx, OperationRequest{
			IdempotencyKey: input.IdempotencyKey,
			ReferenceType:  input.ReferenceType,
			ReferenceID:    input.ReferenceID,
		})
		if err != nil {
			return false, err
		}

		existing, err := uc.entryRepo.FindByOperationID(ctx, tx, op.ID)
		if err != nil {
			return false, err
		}

		switch len(existing) {
		case 0:
			now := uc.now()
			legs := []*domain.Entry{
				{
					ID:          uc.idGen.NewEntryID(),
					AccountID:   input.DebitAccountID,
					EntryType:   domain.EntryTypeDebit,
					Amount:      input.Amount,
					Currency:    input.Currency,
					OperationID: op.ID,
					CreatedAt:   now,
				},
				{
					ID:          uc.idGen.NewEntryID(),
					AccountID:   input.CreditAccountID,
					EntryType:   domain.EntryTypeCredit,
					Amount:      input.Amount,
					Currency:    input.Currency,
					OperationID: op.ID,
					CreatedAt:   now,
				},
			}

			if err := uc.entryRepo.InsertAll(ctx, tx, legs); err != nil {
				return false, err
			}

			result = &OperationResult{Operation: op, Entries: legs}
			return false, nil
		case 2:
			legs, err := orderLegs(op.ID, existing)
			if err != nil {
				return false, err
			}

			result = &OperationResult{Operation: op, Entries: legs, Replayed: true}
			return true, nil
		default:
			return false, fmt.Errorf("%w: operation %s has %d entries, expected 2",
				domain.ErrUnexpectedEntryCount, op.ID, len(existing))
		}
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		uc.countPosted(result.Entries...)
	}

	return result, nil
}

// ReverseOperation posts a new operation mirroring every entry of operationID with the
// direction flipped. Reversing the same operation again returns the existing reversal.
// Reversals cannot themselves be reversed.
func (uc *LedgerCommandUseCase) ReverseOperation(ctx context.Context, operationID uuid.UUID) (*OperationResult, error) {
	if operationID == uuid.Nil {
		return nil, fmt.Errorf("%w: operation id is required", domain.ErrInvalidIDFormat)
	}

	var result *OperationResult

	err := uc.execute(ctx, commandReversal, func(ctx context.Context, tx Transaction) (bool, error) {
		original, err := uc.operationRepo.FindByID(ctx, tx, operationID)
		if err != nil {
			return false, err
		}

		if original == nil {
			return false, fmt.Errorf("%w: %s", domain.ErrOperationNotFound, operationID)
		}

		if original.IsReversal() {
			return false, fmt.Errorf("%w: %s reverses %s", domain.ErrOperationIsReversal, original.ID, *original.ReversalOfID)
		}

		originalEntries, err := uc.entryRepo.FindByOperationID(ctx, tx, original.ID)
		if err != nil {
			return false, err
		}

		if len(originalEntries) == 0 {
			return false, fmt.Errorf("%w: %s", domain.ErrOperationWithoutEntry, original.ID)
		}

		reversal, _, err := uc.resolver.Resolve(ctx, tx, OperationRequest{
			IdempotencyKey: domain.ReversalKey(original.ID),
			ReferenceType:  original.ReferenceType,
			ReferenceID:    original.ReferenceID,
			ReversalOfID:   &original.ID,
		})
		if err != nil {
			return false, err
		}

		existing, err := uc.entryRepo.FindByOperationID(ctx, tx, reversal.ID)
		if err != nil {
			return false, err
		}

		switch len(existing) {
		case 0:
			now := uc.now()
			mirrored := make([]*domain.Entry, 0, len(originalEntries))
			for _, entry := range originalEntries {
				mirrored = append(mirrored, entry.Mirror(uc.idGen.NewEntryID(), reversal.ID, now))
			}

			if err := uc.entryRepo.InsertAll(ctx, tx, mirrored); err != nil {
				return false, err
			}

			result = &OperationResult{Operation: reversal, Entries: mirrored}
			return false, nil
		case len(originalEntries):
			result = &OperationResult{Operation: reversal, Entries: existing, Replayed: true}
			return true, nil
		default:
			return false, fmt.Errorf("%w: reversal %s has %d entries, original %s has %d",
				domain.ErrUnexpectedEntryCount, reversal.ID, len(existing), original.ID, len(originalEntries))
		}
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		uc.countPosted(result.Entries...)
	}

	return result, nil
}

// execute runs fn in one transaction, retrying the whole unit of work when a retrier is set.
// fn reports whether the command was answered from an existing operation.
func (uc *LedgerCommandUseCase) execute(ctx context.Context, command string, fn func(ctx context.Context, tx Transaction) (bool, error)) error {
	start := time.Now()

	var replayed bool
	run := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		replayed, err = fn(txCtx, tx)
		if err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}

	uc.observe(ctx, command, replayed, err, time.Since(start))

	return err
}

func (uc *LedgerCommandUseCase) observe(ctx context.Context, command string, replayed bool, err error, elapsed time.Duration) {
	if errors.Is(err, domain.ErrInconsistentState) {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("command", command).
			Msg("ledger invariant violated")
	}

	if uc.metrics == nil {
		return
	}

	uc.metrics.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())

	switch {
	case err != nil:
		kind := "internal"
		switch domain.Kind(err) {
		case domain.ErrValidation:
			kind = "validation"
		case domain.ErrConflict:
			kind = "conflict"
		case domain.ErrNotFound:
			kind = "not_found"
		case domain.ErrInconsistentState:
			kind = "inconsistent"
			uc.metrics.Inconsistencies.Inc()
		}
		uc.metrics.CommandErrors.WithLabelValues(command, kind).Inc()
	case replayed:
		uc.metrics.OperationsReplayed.WithLabelValues(command).Inc()
	default:
		uc.metrics.OperationsCreated.WithLabelValues(command).Inc()
	}
}

func (uc *LedgerCommandUseCase) countPosted(entries ...*domain.Entry) {
	if uc.metrics == nil {
		return
	}

	for _, e := range entries {
		uc.metrics.EntriesPosted.WithLabelValues(string(e.EntryType), string(e.Currency)).Inc()
	}
}

// orderLegs returns the DEBIT leg followed by the CREDIT leg of a composite movement.
func orderLegs(operationID uuid.UUID, entries []*domain.Entry) ([]*domain.Entry, error) {
	var debit, credit *domain.Entry
	for _, e := range entries {
		switch e.EntryType {
		case domain.EntryTypeDebit:
			debit = e
		case domain.EntryTypeCredit:
			credit = e
		}
	}

	if debit == nil || credit == nil {
		return nil, fmt.Errorf("%w: operation %s is not a debit/credit pair", domain.ErrInconsistentState, operationID)
	}

	return []*domain.Entry{debit, credit}, nil
}
