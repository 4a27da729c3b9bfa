package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banca/opledger/internal/adapter/http/dto"
	"github.com/banca/opledger/internal/adapter/http/handler"
	apimiddleware "github.com/banca/opledger/internal/adapter/http/middleware"
	"github.com/banca/opledger/internal/adapter/repository/memory"
	"github.com/banca/opledger/internal/infrastructure/idgen"
	"github.com/banca/opledger/internal/infrastructure/metrics"
	"github.com/banca/opledger/internal/usecase"
)

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.New()
	opRepo := memory.NewOperationRepository(store)
	entryRepo := memory.NewEntryRepository(store)

	commands := usecase.NewLedgerCommandUseCase(store, opRepo, entryRepo, idgen.New())
	queries := usecase.NewLedgerQueryUseCase(opRepo, entryRepo)
	ledger := usecase.NewLedgerUseCase(memory.NewLedgerRepository(store))

	cfg := RouterConfig{
		EntryHandler:     handler.NewEntryHandler(commands, queries),
		AccountHandler:   handler.NewAccountHandler(queries),
		OperationHandler: handler.NewOperationHandler(commands, queries),
		LedgerHandler:    handler.NewLedgerHandler(ledger),
		HealthHandler:    handler.NewHealthHandler(),
		Logger:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	require.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.MetricsPath = "/metrics"
		cfg.MetricsHandler = promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}))

	chiRoutes, ok := router.(chi.Router)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	require.NoError(t, chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}))

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/entries/",
		"POST /api/v1/entries/composite",
		"GET /api/v1/entries/{entryId}",
		"GET /api/v1/accounts/{accountId}/entries",
		"GET /api/v1/accounts/{accountId}/balance",
		"GET /api/v1/accounts/{accountId}/balance/history",
		"GET /api/v1/operations/{operationId}",
		"GET /api/v1/operations/by-key/{idempotencyKey}",
		"POST /api/v1/operations/{operationId}/reversal",
		"GET /api/v1/ledger/integrity",
	}

	for _, route := range expected {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}

func TestNewRouter_EndToEnd(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
	}))

	single := `{"accountId":10,"entryType":"CREDIT","amount":"100.00","currency":"PEN","referenceType":"DEPOSIT","referenceId":"ref-1","idempotencyKey":"idem-1"}`

	first := do(t, router, http.MethodPost, "/api/v1/entries", single)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	again := do(t, router, http.MethodPost, "/api/v1/entries", single)
	require.Equal(t, http.StatusOK, again.Code)

	var a, b dto.EntryPostedResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &b))
	assert.Equal(t, a.Entry.ID, b.Entry.ID)
	assert.True(t, b.Replayed)

	conflicting := strings.Replace(single, `"ref-1"`, `"ref-2"`, 1)
	assert.Equal(t, http.StatusConflict, do(t, router, http.MethodPost, "/api/v1/entries", conflicting).Code)

	composite := `{"debitAccountId":1001,"creditAccountId":2001,"amount":"150.00","currency":"PEN","referenceType":"TRANSFER","referenceId":"trf-1","idempotencyKey":"comp-1"}`
	moved := do(t, router, http.MethodPost, "/api/v1/entries/composite", composite)
	require.Equal(t, http.StatusCreated, moved.Code, moved.Body.String())

	var movement dto.OperationEntriesResponse
	require.NoError(t, json.Unmarshal(moved.Body.Bytes(), &movement))
	require.Len(t, movement.Entries, 2)

	balance := do(t, router, http.MethodGet, "/api/v1/accounts/1001/balance", "")
	require.Equal(t, http.StatusOK, balance.Code)
	var bal dto.BalanceResponse
	require.NoError(t, json.Unmarshal(balance.Body.Bytes(), &bal))
	assert.Equal(t, "-150", bal.Balance.String())
	assert.Contains(t, balance.Body.String(), `"balance":"-150.0000"`)

	past := do(t, router, http.MethodGet, "/api/v1/accounts/1001/balance/history?upToDate=2000-01-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, past.Code)
	assert.Contains(t, past.Body.String(), `"currency":null`)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/accounts/999/balance", "").Code)

	reversalPath := "/api/v1/operations/" + movement.Operation.ID.String() + "/reversal"
	assert.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, reversalPath, "").Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, reversalPath, "").Code)

	byKey := do(t, router, http.MethodGet, "/api/v1/operations/by-key/comp-1", "")
	assert.Equal(t, http.StatusOK, byKey.Code)

	listing := do(t, router, http.MethodGet, "/api/v1/accounts/1001/entries?page=0&size=1", "")
	require.Equal(t, http.StatusOK, listing.Code)
	var page dto.EntryPageResponse
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	integrity := do(t, router, http.MethodGet, "/api/v1/ledger/integrity", "")
	assert.Equal(t, http.StatusOK, integrity.Code)
}

func TestNewRouter_IdempotencyHeaderReplaysResponse(t *testing.T) {
	store := &memoryIdempotencyStore{values: map[string][]byte{}}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Idempotency = apimiddleware.NewIdempotencyMiddleware(store)
	}))

	body := `{"accountId":10,"entryType":"DEBIT","amount":"5","currency":"USD","referenceType":"FEE","referenceId":"fee-1","idempotencyKey":"fee-1"}`

	first := do(t, router, http.MethodPost, "/api/v1/entries", body, apimiddleware.IdempotencyKeyHeader, "hdr-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(t, router, http.MethodPost, "/api/v1/entries", body, apimiddleware.IdempotencyKeyHeader, "hdr-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(apimiddleware.IdempotencyReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

type memoryIdempotencyStore struct {
	values map[string][]byte
}

func (s *memoryIdempotencyStore) CheckAndSet(_ context.Context, key string, _ []byte, _ time.Duration) (bool, []byte, error) {
	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	s.values[key] = []byte("processing")
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.values[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}
