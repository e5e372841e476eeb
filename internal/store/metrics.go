package store

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/teachsync/internal/model"
)

// Metrics counts store operations on a private registry.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	importIssues prometheus.Counter
}

// NewMetrics creates the collectors under namespace and registers them on a
// new registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Store operations by name and outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Store operation latency including lock wait",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		importIssues: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_row_issues_total",
				Help:      "Workbook rows skipped or repaired during import",
			},
		),
	}

	registry.MustRegister(m.operations, m.duration, m.importIssues)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format,
// replacing path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) observeImportIssues(n int) {
	if m == nil || n == 0 {
		return
	}
	m.importIssues.Add(float64(n))
}

// outcome is "ok" or the lower-cased error code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(model.CodeOf(err)))
}
