package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistererRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.OperationsCreated == nil || m.IdempotencyRaces == nil || m.QueryDuration == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.OperationsCreated.WithLabelValues("single_entry").Inc()
	m.IdempotencyRaces.Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.OperationsCreated.WithLabelValues("single_entry")); got != 1 {
		t.Fatalf("expected 1 created operation, got %v", got)
	}
}

func TestNewWithRegistererRejectsDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegisterer(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()

	NewWithRegisterer(registry)
}
