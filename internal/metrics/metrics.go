// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the application collectors. A nil *Metrics is valid and
// records nothing, which keeps call sites free of nil checks in tests.
type Metrics struct {
	reorders   *prometheus.CounterVec
	cache      *prometheus.CounterVec
	refetches  prometheus.Counter
	operations *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reorders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanban",
			Name:      "reorders_total",
			Help:      "Drag-end reorders by kind (columns, cards, move) and result.",
		}, []string{"kind", "result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanban",
			Name:      "board_cache_lookups_total",
			Help:      "Board snapshot cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		refetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kanban",
			Name:      "board_refetches_total",
			Help:      "Board reloads triggered by a failed optimistic write.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kanban",
			Name:      "operations_total",
			Help:      "Board data operations by name and result.",
		}, []string{"operation", "result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reorders,
		m.cache,
		m.refetches,
		m.operations,
	)

	return m
}

func (m *Metrics) Reorder(kind string, ok bool) {
	if m == nil {
		return
	}
	m.reorders.WithLabelValues(kind, result(ok)).Inc()
}

func (m *Metrics) CacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Refetch() {
	if m == nil {
		return
	}
	m.refetches.Inc()
}

func (m *Metrics) Operation(name string, ok bool) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(name, result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
