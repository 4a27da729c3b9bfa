package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Command metrics
	OperationsCreated  *prometheus.CounterVec
	OperationsReplayed *prometheus.CounterVec
	CommandErrors      *prometheus.CounterVec
	CommandDuration    *prometheus.HistogramVec
	EntriesPosted      *prometheus.CounterVec

	// Idempotency metrics
	IdempotencyRaces     prometheus.Counter
	IdempotencyConflicts prometheus.Counter

	// Integrity metrics
	Inconsistencies prometheus.Counter

	// Query metrics
	QueryDuration *prometheus.HistogramVec
	CacheLookups  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	IdempotentReplays    prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registerer
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all Prometheus metrics on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opledger_operations_created_total",
			Help: "Total number of operations created",
		}, []string{"command"}),
		OperationsReplayed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opledger_operations_replayed_total",
			Help: "Total number of commands answered from an existing operation",
		}, []string{"command"}),
		CommandErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opledger_command_errors_total",
			Help: "Total number of failed commands by error kind",
		}, []string{"command", "kind"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opledger_command_duration_seconds",
			Help:    "Duration of ledger commands",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		EntriesPosted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opledger_entries_posted_total",
			Help: "Total number of entries posted",
		}, []string{"entry_type", "currency"}),

		IdempotencyRaces: factory.NewCounter(prometheus.CounterOpts{
			Name: "opledger_idempotency_races_total",
			Help: "Inserts that lost the idempotency key race and re-read the winner",
		}),
		IdempotencyConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "opledger_idempotency_conflicts_total",
			Help: "Idempotency keys reused for a different reference",
		}),

		Inconsistencies: factory.NewCounter(prometheus.CounterOpts{
			Name: "opledger_inconsistencies_total",
			Help: "Persisted states found violating a ledger invariant",
		}),

		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opledger_query_duration_seconds",
			Help:    "Duration of ledger queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opledger_operation_cache_lookups_total",
			Help: "Operation cache lookups by result",
		}, []string{"result"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opledger_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opledger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "opledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "opledger_http_idempotent_replays_total",
			Help: "Responses replayed from the Idempotency-Key store",
		}),
	}
}
