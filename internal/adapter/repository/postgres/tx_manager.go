package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/banca/opledger/internal/infrastructure/postgres/generated"
	"github.com/banca/opledger/internal/usecase"
)

// ErrForeignTransaction is returned when a repository receives a transaction it did not start.
var ErrForeignTransaction = errors.New("postgres: transaction was not started by this package")

// Pool is the subset of *pgxpool.Pool the repositories depend on.
type Pool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool Pool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool Pool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction at the pool's default isolation level (READ COMMITTED).
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

// queriesFor binds generated queries to tx, or to the pool when tx is nil.
func queriesFor(pool Pool, tx usecase.Transaction) (*generated.Queries, error) {
	if tx == nil {
		return generated.New(pool), nil
	}

	pgxTx, ok := tx.(*Tx)
	if !ok || pgxTx == nil {
		return nil, ErrForeignTransaction
	}

	return generated.New(pgxTx.PgxTx()), nil
}
