package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/postgres/generated"
	"github.com/banca/opledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool Pool) *EntryRepository {
	return &EntryRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// FindByOperationID retrieves the entries of an operation ordered by creation.
func (r *EntryRepository) FindByOperationID(ctx context.Context, tx usecase.Transaction, operationID uuid.UUID) ([]*domain.Entry, error) {
	queries, err := queriesFor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetEntriesByOperation(ctx, uuidToPg(operationID))
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// FindByID retrieves an entry by ID.
func (r *EntryRepository) FindByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToEntry(row), nil
}

// InsertAll creates the given entries inside tx.
func (r *EntryRepository) InsertAll(ctx context.Context, tx usecase.Transaction, entries []*domain.Entry) error {
	if tx == nil {
		return fmt.Errorf("postgres: entry insert requires a transaction")
	}

	queries, err := queriesFor(r.pool, tx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		err := queries.InsertEntry(ctx, generated.InsertEntryParams{
			ID:          entry.ID,
			AccountID:   entry.AccountID,
			EntryType:   string(entry.EntryType),
			Amount:      decimalToNumeric(entry.Amount),
			Currency:    string(entry.Currency),
			OperationID: uuidToPg(entry.OperationID),
			CreatedAt:   timeToPgTimestamptz(entry.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", entry.ID, err)
		}
	}

	return nil
}

// SumAmount sums the amounts of one entry type for an account.
func (r *EntryRepository) SumAmount(ctx context.Context, accountID int64, entryType domain.EntryType, cutoff *time.Time) (decimal.Decimal, error) {
	if cutoff == nil {
		total, err := r.queries.SumEntryAmounts(ctx, generated.SumEntryAmountsParams{
			AccountID: accountID,
			EntryType: string(entryType),
		})
		if err != nil {
			return decimal.Zero, err
		}
		return numericToDecimal(total), nil
	}

	total, err := r.queries.SumEntryAmountsUpTo(ctx, generated.SumEntryAmountsUpToParams{
		AccountID: accountID,
		EntryType: string(entryType),
		CreatedAt: timeToPgTimestamptz(*cutoff),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// FindLatestByAccount retrieves the most recent entry of an account at or before cutoff.
func (r *EntryRepository) FindLatestByAccount(ctx context.Context, accountID int64, cutoff *time.Time) (*domain.Entry, error) {
	var (
		row generated.LedgerEntry
		err error
	)

	if cutoff == nil {
		row, err = r.queries.GetLatestEntryByAccount(ctx, accountID)
	} else {
		row, err = r.queries.GetLatestEntryByAccountUpTo(ctx, generated.GetLatestEntryByAccountUpToParams{
			AccountID: accountID,
			CreatedAt: timeToPgTimestamptz(*cutoff),
		})
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return rowToEntry(row), nil
}

// ListByAccount retrieves a page of an account's entries, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Entry, error) {
	if offset < 0 || offset > math.MaxInt32 || limit <= 0 || limit > math.MaxInt32 {
		return []*domain.Entry{}, nil
	}

	rows, err := r.queries.GetEntriesByAccount(ctx, generated.GetEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// CountByAccount counts an account's entries.
func (r *EntryRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	return r.queries.CountEntriesByAccount(ctx, accountID)
}

func rowsToEntries(rows []generated.LedgerEntry) []*domain.Entry {
	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}
