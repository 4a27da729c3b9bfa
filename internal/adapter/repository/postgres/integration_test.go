package postgres_test

import (
	"context"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banca/opledger/internal/adapter/repository/postgres"
	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/idgen"
	infrapg "github.com/banca/opledger/internal/infrastructure/postgres"
	"github.com/banca/opledger/internal/usecase"
)

// newTestPool connects to OPLEDGER_TEST_DATABASE_URL and applies migrations.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("OPLEDGER_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("OPLEDGER_TEST_DATABASE_URL not set")
	}

	require.NoError(t, infrapg.RunMigrations(dbURL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 20, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func newCommands(pool *pgxpool.Pool) (*usecase.LedgerCommandUseCase, *usecase.LedgerQueryUseCase) {
	opRepo := postgres.NewOperationRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)

	commands := usecase.NewLedgerCommandUseCase(postgres.NewTxManager(pool), opRepo, entryRepo, idgen.New()).
		WithRetrier(postgres.NewRetrier())
	queries := usecase.NewLedgerQueryUseCase(opRepo, entryRepo)

	return commands, queries
}

// Accounts are random so reruns against the same database do not interfere.
func randomAccount() int64 {
	return rand.Int64N(1<<40) + 1
}

func TestIntegration_ConcurrentSameKeyPostsOnce(t *testing.T) {
	pool := newTestPool(t)
	commands, queries := newCommands(pool)
	ctx := context.Background()

	account := randomAccount()
	key := "it-" + uuid.NewString()

	const workers = 16
	var (
		wg       sync.WaitGroup
		created  atomic.Int32
		replayed atomic.Int32
		ids      sync.Map
	)

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()

			res, err := commands.CreateSingleEntry(ctx, usecase.CreateEntryInput{
				AccountID:      account,
				EntryType:      domain.EntryTypeCredit,
				Amount:         decimal.RequireFromString("100.00"),
				Currency:       "PEN",
				ReferenceType:  domain.ReferenceTypeDeposit,
				ReferenceID:    "ref-1",
				IdempotencyKey: key,
			})
			if !assert.NoError(t, err) {
				return
			}

			ids.Store(res.Entry.ID, struct{}{})
			if res.Replayed {
				replayed.Add(1)
			} else {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), replayed.Load())

	distinct := 0
	ids.Range(func(_, _ any) bool {
		distinct++
		return true
	})
	assert.Equal(t, 1, distinct)

	balance, err := queries.GetAccountBalance(ctx, account)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("100.00")), balance.Balance.String())
}

func TestIntegration_CompositeAndReversal(t *testing.T) {
	pool := newTestPool(t)
	commands, queries := newCommands(pool)
	ctx := context.Background()

	debit, credit := randomAccount(), randomAccount()

	movement, err := commands.RecordCompositeMovement(ctx, usecase.CompositeMovementInput{
		DebitAccountID:  debit,
		CreditAccountID: credit,
		Amount:          decimal.RequireFromString("150.00"),
		Currency:        "PEN",
		ReferenceType:   domain.ReferenceTypeTransfer,
		ReferenceID:     "trf-1",
		IdempotencyKey:  "it-" + uuid.NewString(),
	})
	require.NoError(t, err)
	require.Len(t, movement.Entries, 2)

	reversal, err := commands.ReverseOperation(ctx, movement.Operation.ID)
	require.NoError(t, err)
	require.Len(t, reversal.Entries, 2)
	assert.False(t, reversal.Replayed)

	again, err := commands.ReverseOperation(ctx, movement.Operation.ID)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, reversal.Operation.ID, again.Operation.ID)

	for _, account := range []int64{debit, credit} {
		balance, err := queries.GetAccountBalance(ctx, account)
		require.NoError(t, err)
		assert.True(t, balance.Balance.IsZero(), "account %d: %s", account, balance.Balance)
	}

	page, err := queries.ListEntries(ctx, usecase.ListEntriesInput{AccountID: debit, Page: 0, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)

	report, err := usecase.NewLedgerUseCase(postgres.NewLedgerRepository(pool)).CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.OperationsWithoutEntries)
}
