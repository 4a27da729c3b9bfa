package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
	"github.com/banca/opledger/internal/usecase/mocks"
)

func TestLedgerUseCase_CheckIntegrity(t *testing.T) {
	repoErr := errors.New("db down")
	totals := []domain.CurrencyTotals{{Currency: "PEN", Debits: decimal.NewFromInt(10), Credits: decimal.NewFromInt(25)}}

	tests := []struct {
		name        string
		orphans     int64
		orphansErr  error
		totalsErr   error
		wantHealthy bool
		wantErr     error
	}{
		{name: "healthy ledger", wantHealthy: true},
		{name: "operations without entries", orphans: 2, wantHealthy: false},
		{name: "orphan count error", orphansErr: repoErr, wantErr: repoErr},
		{name: "totals error", totalsErr: repoErr, wantErr: repoErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockLedgerRepository(ctrl)

			repo.EXPECT().CountOperationsWithoutEntries(gomock.Any()).Return(tt.orphans, tt.orphansErr)
			if tt.orphansErr == nil {
				repo.EXPECT().TotalsByCurrency(gomock.Any()).Return(totals, tt.totalsErr)
			}

			report, err := usecase.NewLedgerUseCase(repo).CheckIntegrity(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.Healthy() != tt.wantHealthy {
				t.Errorf("Healthy() = %v, want %v", report.Healthy(), tt.wantHealthy)
			}
			if report.OperationsWithoutEntries != tt.orphans {
				t.Errorf("expected %d orphans, got %d", tt.orphans, report.OperationsWithoutEntries)
			}
			if len(report.Totals) != 1 || report.CheckedAt.IsZero() {
				t.Errorf("unexpected report %+v", report)
			}
		})
	}
}
