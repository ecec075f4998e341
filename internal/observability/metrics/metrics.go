package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)

// Config labels metrics with service identity.
type Config struct {
	ServiceName string
	Environment string
}

// StoreMetrics captures domain store health signals.
type StoreMetrics struct {
	service string
	env     string

	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	retries        *prometheus.CounterVec
	fallbackServes *prometheus.CounterVec
}

var (
	storeMetricsOnce sync.Once
	storeMetrics     *StoreMetrics
)

// Store returns the singleton store metrics registry.
func Store() *StoreMetrics {
	return StoreWithConfig(Config{ServiceName: "tilldesk"})
}

// StoreWithConfig initializes the singleton with service identity labels.
func StoreWithConfig(cfg Config) *StoreMetrics {
	storeMetricsOnce.Do(func() {
		storeMetrics = newStoreMetrics(cfg)
	})
	return storeMetrics
}

func newStoreMetrics(cfg Config) *StoreMetrics {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "tilldesk"
	}
	return &StoreMetrics{
		service: service,
		env:     strings.TrimSpace(cfg.Environment),
		actions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tilldesk_store_actions_total",
			Help: "Store actions by domain, action and outcome.",
		}, []string{"service", "env", "domain", "action", "outcome"}),
		actionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tilldesk_store_action_duration_seconds",
			Help:    "Store action duration, including platform round trips.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "env", "domain", "action"}),
		retries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tilldesk_transport_retries_total",
			Help: "Platform transport retry attempts by operation.",
		}, []string{"service", "env", "operation"}),
		fallbackServes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tilldesk_fallback_serves_total",
			Help: "Operations answered from the demo fallback dataset.",
		}, []string{"service", "env", "domain", "operation"}),
	}
}

// ObserveAction records one completed store action.
func (m *StoreMetrics) ObserveAction(domain, action, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(m.service, m.env, domain, action, outcome).Inc()
	m.actionDuration.WithLabelValues(m.service, m.env, domain, action).Observe(duration.Seconds())
}

// IncRetry records one transport retry attempt.
func (m *StoreMetrics) IncRetry(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(m.service, m.env, operation).Inc()
}

// IncFallback records an operation served from the demo dataset.
func (m *StoreMetrics) IncFallback(domain, operation string) {
	if m == nil {
		return
	}
	m.fallbackServes.WithLabelValues(m.service, m.env, domain, operation).Inc()
}

// ResetStoreMetricsForTest clears the singleton so tests can swap registries.
func ResetStoreMetricsForTest() {
	storeMetricsOnce = sync.Once{}
	storeMetrics = nil
}
