package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/metrics"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
	now        Clock
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		now:        SystemClock,
	}
}

// WithMetrics enables integrity metrics.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

// CheckIntegrity looks for operations that were committed without entries and reports
// the DEBIT and CREDIT totals per currency.
func (uc *LedgerUseCase) CheckIntegrity(ctx context.Context) (*domain.IntegrityReport, error) {
	orphans, err := uc.ledgerRepo.CountOperationsWithoutEntries(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := uc.ledgerRepo.TotalsByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.IntegrityReport{
		CheckedAt:                uc.now(),
		Totals:                   totals,
		OperationsWithoutEntries: orphans,
	}

	if !report.Healthy() {
		zerolog.Ctx(ctx).Error().
			Int64("operations_without_entries", orphans).
			Msg("ledger integrity check failed")

		if uc.metrics != nil {
			uc.metrics.Inconsistencies.Inc()
		}
	}

	return report, nil
}
