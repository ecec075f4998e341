package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveActionIncrementsCounter(t *testing.T) {
	registry := prometheus.NewRegistry()
	restore := swapPrometheusRegistry(registry)
	defer restore()

	m := StoreWithConfig(Config{ServiceName: "tilldesk", Environment: "test"})
	m.ObserveAction("price_adjustment", "create", OutcomeSuccess, 25*time.Millisecond)
	m.ObserveAction("price_adjustment", "create", OutcomeError, 10*time.Millisecond)

	labels := map[string]string{
		"service": "tilldesk",
		"env":     "test",
		"domain":  "price_adjustment",
		"action":  "create",
		"outcome": OutcomeSuccess,
	}
	if got := getCounterValue(t, registry, "tilldesk_store_actions_total", labels); got != 1 {
		t.Fatalf("expected success count 1, got %v", got)
	}

	labels["outcome"] = OutcomeError
	if got := getCounterValue(t, registry, "tilldesk_store_actions_total", labels); got != 1 {
		t.Fatalf("expected error count 1, got %v", got)
	}
}

func TestIncFallbackCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	restore := swapPrometheusRegistry(registry)
	defer restore()

	m := StoreWithConfig(Config{ServiceName: "tilldesk", Environment: "test"})
	m.IncFallback("inventory", "list_by_location")
	m.IncFallback("inventory", "list_by_location")

	labels := map[string]string{
		"service":   "tilldesk",
		"env":       "test",
		"domain":    "inventory",
		"operation": "list_by_location",
	}
	if got := getCounterValue(t, registry, "tilldesk_fallback_serves_total", labels); got != 2 {
		t.Fatalf("expected fallback count 2, got %v", got)
	}
}

func swapPrometheusRegistry(registry *prometheus.Registry) func() {
	oldRegisterer := prometheus.DefaultRegisterer
	oldGatherer := prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
	ResetStoreMetricsForTest()
	return func() {
		prometheus.DefaultRegisterer = oldRegisterer
		prometheus.DefaultGatherer = oldGatherer
		ResetStoreMetricsForTest()
	}
}

func getCounterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	seen := make(map[string]string, len(metric.GetLabel()))
	for _, pair := range metric.GetLabel() {
		seen[pair.GetName()] = pair.GetValue()
	}
	for key, value := range labels {
		if seen[key] != value {
			return false
		}
	}
	return true
}
