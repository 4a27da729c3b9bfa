package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	store *Store
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(store *Store) *OperationRepository {
	return &OperationRepository{store: store}
}

// FindByIdempotencyKey finds an operation by idempotency key.
func (r *OperationRepository) FindByIdempotencyKey(_ context.Context, tx usecase.Transaction, key string) (*domain.Operation, error) {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return nil, err
	}
	return copyOperation(r.store.operationByKey(mtx, key)), nil
}

// FindByID finds an operation by ID.
func (r *OperationRepository) FindByID(_ context.Context, tx usecase.Transaction, id uuid.UUID) (*domain.Operation, error) {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return nil, err
	}
	return copyOperation(r.store.operationByID(mtx, id)), nil
}

// Insert stages a new operation.
func (r *OperationRepository) Insert(_ context.Context, tx usecase.Transaction, op *domain.Operation) error {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}
	if err := requireTx(mtx, "operation insert"); err != nil {
		return err
	}

	if r.store.operationByKey(mtx, op.IdempotencyKey) != nil {
		return domain.ErrDuplicateIdempotencyKey
	}

	if r.store.operationByID(mtx, op.ID) != nil {
		return fmt.Errorf("memory: operation %s already exists", op.ID)
	}

	if op.ReversalOfID != nil {
		if r.store.operationByID(mtx, *op.ReversalOfID) == nil {
			return fmt.Errorf("memory: reversed operation %s does not exist", *op.ReversalOfID)
		}
	}

	mtx.operations = append(mtx.operations, copyOperation(op))
	return nil
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// FindByOperationID returns the entries of an operation, oldest first.
func (r *EntryRepository) FindByOperationID(_ context.Context, tx usecase.Transaction, operationID uuid.UUID) ([]*domain.Entry, error) {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return nil, err
	}
	return copyEntries(r.store.entriesByOperation(mtx, operationID)), nil
}

// FindByID finds a committed entry by ID.
func (r *EntryRepository) FindByID(_ context.Context, id string) (*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return copyEntry(r.store.entries[id]), nil
}

// InsertAll stages entries. Their operation must exist.
func (r *EntryRepository) InsertAll(_ context.Context, tx usecase.Transaction, entries []*domain.Entry) error {
	mtx, err := r.store.txFrom(tx)
	if err != nil {
		return err
	}
	if err := requireTx(mtx, "entry insert"); err != nil {
		return err
	}

	staged := make([]*domain.Entry, 0, len(entries))
	for _, e := range entries {
		if r.store.operationByID(mtx, e.OperationID) == nil {
			return fmt.Errorf("memory: entry %s references missing operation %s", e.ID, e.OperationID)
		}
		if r.store.entryExists(mtx, e.ID) {
			return fmt.Errorf("memory: entry %s already exists", e.ID)
		}
		staged = append(staged, copyEntry(e))
	}

	mtx.entries = append(mtx.entries, staged...)
	return nil
}

// SumAmount sums committed amounts of one entry type.
func (r *EntryRepository) SumAmount(_ context.Context, accountID int64, entryType domain.EntryType, cutoff *time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.store.accountEntries(accountID) {
		if e.EntryType == entryType && notAfter(e, cutoff) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// FindLatestByAccount returns the newest committed entry not after cutoff.
func (r *EntryRepository) FindLatestByAccount(_ context.Context, accountID int64, cutoff *time.Time) (*domain.Entry, error) {
	for _, e := range r.store.accountEntries(accountID) {
		if notAfter(e, cutoff) {
			return copyEntry(e), nil
		}
	}
	return nil, nil
}

// ListByAccount returns committed entries ordered by created_at DESC, id DESC.
func (r *EntryRepository) ListByAccount(_ context.Context, accountID int64, limit, offset int) ([]*domain.Entry, error) {
	all := r.store.accountEntries(accountID)
	if offset < 0 || limit <= 0 || offset >= len(all) {
		return []*domain.Entry{}, nil
	}

	end := offset + limit
	if end > len(all) || end < offset {
		end = len(all)
	}

	return copyEntries(all[offset:end]), nil
}

// CountByAccount counts committed entries of an account.
func (r *EntryRepository) CountByAccount(_ context.Context, accountID int64) (int64, error) {
	return int64(len(r.store.accountEntries(accountID))), nil
}

func notAfter(e *domain.Entry, cutoff *time.Time) bool {
	return cutoff == nil || !e.CreatedAt.After(*cutoff)
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CountOperationsWithoutEntries counts committed operations that own no entry.
func (r *LedgerRepository) CountOperationsWithoutEntries(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for id := range r.store.operations {
		if len(r.store.byOperation[id]) == 0 {
			count++
		}
	}
	return count, nil
}

// TotalsByCurrency sums committed DEBIT and CREDIT amounts per currency.
func (r *LedgerRepository) TotalsByCurrency(_ context.Context) ([]domain.CurrencyTotals, error) {
	r.store.mu.RLock()
	byCurrency := make(map[domain.Currency]*domain.CurrencyTotals)
	for _, e := range r.store.entries {
		t, ok := byCurrency[e.Currency]
		if !ok {
			t = &domain.CurrencyTotals{Currency: e.Currency, Debits: decimal.Zero, Credits: decimal.Zero}
			byCurrency[e.Currency] = t
		}
		if e.EntryType == domain.EntryTypeDebit {
			t.Debits = t.Debits.Add(e.Amount)
		} else {
			t.Credits = t.Credits.Add(e.Amount)
		}
	}
	r.store.mu.RUnlock()

	totals := make([]domain.CurrencyTotals, 0, len(byCurrency))
	for _, t := range byCurrency {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })

	return totals, nil
}
