package postgres

import (
	"context"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool Pool) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(pool)}
}

// CountOperationsWithoutEntries counts operations that own no entry.
func (r *LedgerRepository) CountOperationsWithoutEntries(ctx context.Context) (int64, error) {
	return r.queries.CountOperationsWithoutEntries(ctx)
}

// TotalsByCurrency sums debits and credits per currency.
func (r *LedgerRepository) TotalsByCurrency(ctx context.Context) ([]domain.CurrencyTotals, error) {
	rows, err := r.queries.TotalsByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	totals := make([]domain.CurrencyTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.CurrencyTotals{
			Currency: domain.Currency(row.Currency),
			Debits:   numericToDecimal(row.Debits),
			Credits:  numericToDecimal(row.Credits),
		})
	}

	return totals, nil
}
