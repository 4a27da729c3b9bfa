package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/banca/opledger/internal/adapter/http"
	"github.com/banca/opledger/internal/adapter/http/handler"
	"github.com/banca/opledger/internal/adapter/http/middleware"
	"github.com/banca/opledger/internal/adapter/repository/memory"
	postgresRepo "github.com/banca/opledger/internal/adapter/repository/postgres"
	redisRepo "github.com/banca/opledger/internal/adapter/repository/redis"
	"github.com/banca/opledger/internal/infrastructure/config"
	"github.com/banca/opledger/internal/infrastructure/idgen"
	"github.com/banca/opledger/internal/infrastructure/logger"
	"github.com/banca/opledger/internal/infrastructure/metrics"
	"github.com/banca/opledger/internal/infrastructure/postgres"
	"github.com/banca/opledger/internal/infrastructure/redis"
	"github.com/banca/opledger/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

// storage bundles the repositories for the selected driver.
type storage struct {
	txManager     usecase.TransactionManager
	operationRepo usecase.OperationRepository
	entryRepo     usecase.EntryRepository
	ledgerRepo    usecase.LedgerRepository
	retrier       usecase.Retrier
	checks        []handler.HealthCheck
	close         func()
}

// app is the fully wired HTTP application.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := newApp(ctx, cfg, appLogger, prometheus.NewRegistry())
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      application.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	if application.rateLimiter != nil {
		go cleanupLimiters(ctx, application.rateLimiter, appLogger)
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		appLogger.Error().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}

// newApp wires storage, caches and use cases into the HTTP router.
func newApp(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegisterer(reg)

	a := &app{}

	store, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	idGen := idgen.New()
	commands := usecase.NewLedgerCommandUseCase(store.txManager, store.operationRepo, store.entryRepo, idGen).
		WithMetrics(m)
	if store.retrier != nil {
		commands.WithRetrier(store.retrier)
	}
	queries := usecase.NewLedgerQueryUseCase(store.operationRepo, store.entryRepo).WithMetrics(m)
	ledger := usecase.NewLedgerUseCase(store.ledgerRepo).WithMetrics(m)

	checks := store.checks
	var idempotency *middleware.IdempotencyMiddleware
	if cfg.RedisEnabled {
		client, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
			URL:      cfg.RedisURL,
			PoolSize: cfg.RedisPoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })

		queries.WithCache(redisRepo.NewCache(client), cfg.OperationCacheTTL)
		idempotency = middleware.NewIdempotencyMiddleware(redisRepo.NewIdempotencyStore(client)).
			WithTTL(cfg.IdempotencyTTL).
			WithMetrics(m)
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntryHandler:     handler.NewEntryHandler(commands, queries),
		AccountHandler:   handler.NewAccountHandler(queries),
		OperationHandler: handler.NewOperationHandler(commands, queries),
		LedgerHandler:    handler.NewLedgerHandler(ledger),
		HealthHandler:    handler.NewHealthHandler(checks...),
		Logger:           appLogger,
		Metrics:          m,
		MetricsPath:      cfg.MetricsPath,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimiter:      a.rateLimiter,
		Idempotency:      idempotency,
	})

	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		appLogger.Warn().Msg("using in-memory storage; data is lost on restart")
		store := memory.New()
		return &storage{
			txManager:     store,
			operationRepo: memory.NewOperationRepository(store),
			entryRepo:     memory.NewEntryRepository(store),
			ledgerRepo:    memory.NewLedgerRepository(store),
			close:         func() {},
		}, nil
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		appLogger.Info().Msg("database migrations applied")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
		MaxConnIdleTime: cfg.DatabaseMaxConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	appLogger.Info().Msg("connected to postgres")

	return &storage{
		txManager:     postgresRepo.NewTxManager(pool),
		operationRepo: postgresRepo.NewOperationRepository(pool),
		entryRepo:     postgresRepo.NewEntryRepository(pool),
		ledgerRepo:    postgresRepo.NewLedgerRepository(pool),
		retrier:       postgresRepo.NewRetrier(),
		checks: []handler.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
		},
		close: pool.Close,
	}, nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, appLogger zerolog.Logger) {
	ticker := time.NewTicker(limiterIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.CleanupLimiters(limiterIdleTimeout); removed > 0 {
				appLogger.Debug().Int("removed", removed).Msg("evicted idle rate limiters")
			}
		}
	}
}
