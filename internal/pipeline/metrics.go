package pipeline

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/wdgraph/internal/extract"
	"github.com/ppiankov/wdgraph/internal/model"
)

// Document outcomes
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
)

// Metrics counts what a load pass did. Each Metrics has its own registry.
type Metrics struct {
	registry    *prometheus.Registry
	documents   *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	exported    prometheus.Counter
	duration    prometheus.Gauge
}

// NewMetrics creates and registers the pass metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wdgraph_documents_total",
			Help: "Entity documents processed, by kind and outcome",
		}, []string{"kind", "outcome"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wdgraph_diagnostics_total",
			Help: "Non-fatal anomalies found while transforming documents",
		}, []string{"diagnostic"}),
		exported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wdgraph_properties_exported_total",
			Help: "Property documents written to the property dump",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wdgraph_pass_duration_seconds",
			Help: "Wall time of the last load pass",
		}),
	}

	m.registry.MustRegister(m.documents, m.diagnostics, m.exported, m.duration)
	return m
}

// Document counts one processed document
func (m *Metrics) Document(kind model.Kind, outcome string) {
	m.documents.WithLabelValues(kind.String(), outcome).Inc()
}

// Diagnostic counts one anomaly
func (m *Metrics) Diagnostic(kind extract.DiagnosticKind) {
	m.diagnostics.WithLabelValues(string(kind)).Inc()
}

// Exported counts one exported property
func (m *Metrics) Exported() {
	m.exported.Inc()
}

// SetDuration records the pass wall time
func (m *Metrics) SetDuration(seconds float64) {
	m.duration.Set(seconds)
}

// WriteTextfile writes all metrics in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
