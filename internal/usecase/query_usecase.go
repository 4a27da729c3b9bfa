package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/metrics"
)

// LedgerQueryUseCase answers balance, listing and detail queries.
//
// Balances are always derived from entries. Only operation lookups are cached, since a
// committed operation and its entry set never change.
type LedgerQueryUseCase struct {
	operationRepo OperationRepository
	entryRepo     EntryRepository
	cache         Cache
	cacheTTL      time.Duration
	metrics       *metrics.Metrics
}

// NewLedgerQueryUseCase creates a new LedgerQueryUseCase.
func NewLedgerQueryUseCase(operationRepo OperationRepository, entryRepo EntryRepository) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{
		operationRepo: operationRepo,
		entryRepo:     entryRepo,
		cacheTTL:      DefaultOperationCacheTTL,
	}
}

// WithCache enables caching of operation lookups.
func (uc *LedgerQueryUseCase) WithCache(cache Cache, ttl time.Duration) *LedgerQueryUseCase {
	uc.cache = cache
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// WithMetrics enables query metrics.
func (uc *LedgerQueryUseCase) WithMetrics(m *metrics.Metrics) *LedgerQueryUseCase {
	uc.metrics = m
	return uc
}

// ListEntriesInput represents input for listing account entries.
type ListEntriesInput struct {
	AccountID int64
	Page      int
	PageSize  int
}

// GetAccountBalance returns credits minus debits over every entry of the account.
func (uc *LedgerQueryUseCase) GetAccountBalance(ctx context.Context, accountID int64) (*domain.AccountBalance, error) {
	defer uc.observe("account_balance", time.Now())

	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	return uc.balance(ctx, accountID, nil)
}

// GetAccountBalanceUpToDate returns the balance over entries created at or before cutoff.
// An account without qualifying entries has a zero balance and no currency.
func (uc *LedgerQueryUseCase) GetAccountBalanceUpToDate(ctx context.Context, accountID int64, cutoff time.Time) (*domain.AccountBalance, error) {
	defer uc.observe("account_balance_up_to_date", time.Now())

	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	if cutoff.IsZero() {
		return nil, fmt.Errorf("%w: cutoff date is required", domain.ErrValidation)
	}

	return uc.balance(ctx, accountID, &cutoff)
}

func (uc *LedgerQueryUseCase) balance(ctx context.Context, accountID int64, cutoff *time.Time) (*domain.AccountBalance, error) {
	latest, err := uc.entryRepo.FindLatestByAccount(ctx, accountID, cutoff)
	if err != nil {
		return nil, err
	}

	if latest == nil {
		if cutoff == nil {
			return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accountID)
		}
		return &domain.AccountBalance{AccountID: accountID, Balance: decimal.Zero, AsOf: cutoff}, nil
	}

	credits, err := uc.entryRepo.SumAmount(ctx, accountID, domain.EntryTypeCredit, cutoff)
	if err != nil {
		return nil, err
	}

	debits, err := uc.entryRepo.SumAmount(ctx, accountID, domain.EntryTypeDebit, cutoff)
	if err != nil {
		return nil, err
	}

	currency := latest.Currency

	return &domain.AccountBalance{
		AccountID: accountID,
		Balance:   credits.Sub(debits),
		Currency:  &currency,
		AsOf:      cutoff,
	}, nil
}

// ListEntries returns one page of the account's entries, newest first.
func (uc *LedgerQueryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) (domain.Page[*domain.Entry], error) {
	defer uc.observe("list_entries", time.Now())

	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return domain.Page[*domain.Entry]{}, err
	}

	if err := domain.ValidatePagination(input.Page, input.PageSize); err != nil {
		return domain.Page[*domain.Entry]{}, err
	}

	total, err := uc.entryRepo.CountByAccount(ctx, input.AccountID)
	if err != nil {
		return domain.Page[*domain.Entry]{}, err
	}

	var entries []*domain.Entry
	offset := input.Page * input.PageSize
	if int64(offset) < total {
		entries, err = uc.entryRepo.ListByAccount(ctx, input.AccountID, input.PageSize, offset)
		if err != nil {
			return domain.Page[*domain.Entry]{}, err
		}
	}

	return domain.NewPage(entries, input.Page, input.PageSize, total), nil
}

// GetEntryDetail returns an entry with its owning operation.
func (uc *LedgerQueryUseCase) GetEntryDetail(ctx context.Context, entryID string) (*domain.EntryDetail, error) {
	defer uc.observe("entry_detail", time.Now())

	if strings.TrimSpace(entryID) == "" {
		return nil, fmt.Errorf("%w: entry id is required", domain.ErrInvalidIDFormat)
	}

	entry, err := uc.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, entryID)
	}

	op, err := uc.operationRepo.FindByID(ctx, nil, entry.OperationID)
	if err != nil {
		return nil, err
	}

	if op == nil {
		uc.reportInconsistency(ctx)
		return nil, fmt.Errorf("%w: entry %s, operation %s", domain.ErrOrphanEntry, entry.ID, entry.OperationID)
	}

	return &domain.EntryDetail{Entry: entry, Operation: op}, nil
}

// GetOperationEntries returns an operation and all of its entries.
func (uc *LedgerQueryUseCase) GetOperationEntries(ctx context.Context, operationID uuid.UUID) (*domain.OperationEntries, error) {
	defer uc.observe("operation_entries", time.Now())

	if operationID == uuid.Nil {
		return nil, fmt.Errorf("%w: operation id is required", domain.ErrInvalidIDFormat)
	}

	return uc.cachedOperation(ctx, "operation:id:"+operationID.String(), func() (*domain.Operation, error) {
		op, err := uc.operationRepo.FindByID(ctx, nil, operationID)
		if err != nil {
			return nil, err
		}
		if op == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrOperationNotFound, operationID)
		}
		return op, nil
	})
}

// GetOperationEntriesByIdempotencyKey returns the operation bound to key and all of its entries.
func (uc *LedgerQueryUseCase) GetOperationEntriesByIdempotencyKey(ctx context.Context, key string) (*domain.OperationEntries, error) {
	defer uc.observe("operation_entries_by_key", time.Now())

	if err := domain.ValidateIdempotencyKey(key); err != nil {
		return nil, err
	}

	return uc.cachedOperation(ctx, "operation:key:"+key, func() (*domain.Operation, error) {
		op, err := uc.operationRepo.FindByIdempotencyKey(ctx, nil, key)
		if err != nil {
			return nil, err
		}
		if op == nil {
			return nil, fmt.Errorf("%w: idempotency key %q", domain.ErrOperationNotFound, key)
		}
		return op, nil
	})
}

func (uc *LedgerQueryUseCase) cachedOperation(ctx context.Context, cacheKey string, load func() (*domain.Operation, error)) (*domain.OperationEntries, error) {
	if cached := uc.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	op, err := load()
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.FindByOperationID(ctx, nil, op.ID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		uc.reportInconsistency(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrOperationWithoutEntry, op.ID)
	}

	result := &domain.OperationEntries{Operation: op, Entries: entries}
	uc.toCache(ctx, cacheKey, result)

	return result, nil
}

func (uc *LedgerQueryUseCase) fromCache(ctx context.Context, key string) *domain.OperationEntries {
	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("operation cache read failed")
		return nil
	}

	if data == nil {
		uc.countLookup("miss")
		return nil
	}

	var cached domain.OperationEntries
	if err := json.Unmarshal(data, &cached); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("discarding undecodable cache entry")
		_ = uc.cache.Delete(ctx, key)
		return nil
	}

	uc.countLookup("hit")
	return &cached
}

func (uc *LedgerQueryUseCase) toCache(ctx context.Context, key string, value *domain.OperationEntries) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("operation cache write failed")
	}
}

func (uc *LedgerQueryUseCase) reportInconsistency(ctx context.Context) {
	zerolog.Ctx(ctx).Error().Msg("ledger invariant violated on read")
	if uc.metrics != nil {
		uc.metrics.Inconsistencies.Inc()
	}
}

func (uc *LedgerQueryUseCase) countLookup(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (uc *LedgerQueryUseCase) observe(query string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}
