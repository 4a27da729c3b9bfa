package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
)

var (
	// ErrForeignTransaction is returned when a repository receives a transaction it did not open.
	ErrForeignTransaction = errors.New("transaction does not belong to the memory store")
	// ErrTxDone is returned when a finished transaction is used.
	ErrTxDone = errors.New("transaction already committed or rolled back")
)

// Store keeps operations and entries in memory.
//
// Writers are serialized: one transaction is open at a time and its writes stay staged
// until Commit. Reads outside a transaction see committed state only.
type Store struct {
	mu sync.RWMutex

	writer chan struct{}

	operations    map[uuid.UUID]*domain.Operation
	operationKeys map[string]uuid.UUID

	entries     map[string]*domain.Entry
	byOperation map[uuid.UUID][]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		writer:        make(chan struct{}, 1),
		operations:    make(map[uuid.UUID]*domain.Operation),
		operationKeys: make(map[string]uuid.UUID),
		entries:       make(map[string]*domain.Entry),
		byOperation:   make(map[uuid.UUID][]string),
	}
}

// Begin opens the single write transaction, waiting for the current one to finish.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case s.writer <- struct{}{}:
		return &Tx{store: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tx stages writes until Commit.
type Tx struct {
	store      *Store
	operations []*domain.Operation
	entries    []*domain.Entry
	done       bool
}

// Commit publishes the staged writes atomically.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}

	s := t.store
	s.mu.Lock()
	for _, op := range t.operations {
		s.operations[op.ID] = op
		s.operationKeys[op.IdempotencyKey] = op.ID
	}
	for _, e := range t.entries {
		s.entries[e.ID] = e
		s.byOperation[e.OperationID] = append(s.byOperation[e.OperationID], e.ID)
	}
	s.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.operations = nil
	t.entries = nil
	<-t.store.writer
}

func (s *Store) txFrom(tx usecase.Transaction) (*Tx, error) {
	if tx == nil {
		return nil, nil
	}

	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != s {
		return nil, ErrForeignTransaction
	}

	if mtx.done {
		return nil, ErrTxDone
	}

	return mtx, nil
}

// operationByKey looks in tx's staged writes first, then in committed state.
func (s *Store) operationByKey(tx *Tx, key string) *domain.Operation {
	if tx != nil {
		for _, op := range tx.operations {
			if op.IdempotencyKey == key {
				return op
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.operationKeys[key]; ok {
		return s.operations[id]
	}
	return nil
}

func (s *Store) operationByID(tx *Tx, id uuid.UUID) *domain.Operation {
	if tx != nil {
		for _, op := range tx.operations {
			if op.ID == id {
				return op
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.operations[id]
}

func (s *Store) entriesByOperation(tx *Tx, operationID uuid.UUID) []*domain.Entry {
	s.mu.RLock()
	ids := s.byOperation[operationID]
	result := make([]*domain.Entry, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.entries[id])
	}
	s.mu.RUnlock()

	if tx != nil {
		for _, e := range tx.entries {
			if e.OperationID == operationID {
				result = append(result, e)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// accountEntries returns committed entries of an account, newest first.
func (s *Store) accountEntries(accountID int64) []*domain.Entry {
	s.mu.RLock()
	var result []*domain.Entry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result
}

func (s *Store) entryExists(tx *Tx, id string) bool {
	for _, e := range tx.entries {
		if e.ID == id {
			return true
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[id]
	return ok
}

func requireTx(tx *Tx, op string) error {
	if tx == nil {
		return fmt.Errorf("memory: %s requires a transaction", op)
	}
	return nil
}

func copyOperation(op *domain.Operation) *domain.Operation {
	if op == nil {
		return nil
	}
	cp := *op
	if op.ReversalOfID != nil {
		id := *op.ReversalOfID
		cp.ReversalOfID = &id
	}
	return &cp
}

func copyEntry(e *domain.Entry) *domain.Entry {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

func copyEntries(entries []*domain.Entry) []*domain.Entry {
	result := make([]*domain.Entry, len(entries))
	for i, e := range entries {
		result[i] = copyEntry(e)
	}
	return result
}
