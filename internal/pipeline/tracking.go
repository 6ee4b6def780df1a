package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names used in metrics and logs
const (
	StageResolve   = "resolve"
	StageIngest    = "ingestion"
	StageNormalize = "normalization"
	StageTotal     = "total"
	StageReconcile = "reconciliation"
)

// Metrics tracks pipeline runs. A nil *Metrics is valid and records nothing.
type Metrics struct {
	loads    *prometheus.CounterVec
	rows     *prometheus.GaugeVec
	drift    *prometheus.CounterVec
	stageDur *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors with reg. A nil reg creates
// unregistered collectors, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uidai",
			Subsystem: "pipeline",
			Name:      "loads_total",
			Help:      "Pipeline loads by dataset kind and outcome.",
		}, []string{"kind", "status"}),
		rows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "uidai",
			Subsystem: "pipeline",
			Name:      "rows_loaded",
			Help:      "Rows in the most recent successful load of each kind.",
		}, []string{"kind"}),
		drift: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uidai",
			Subsystem: "pipeline",
			Name:      "schema_drift_total",
			Help:      "Expected measure columns found missing from a source and zero-filled.",
		}, []string{"kind", "column"}),
		stageDur: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uidai",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "stage"}),
	}
}

// ObserveStage records the time since start for a stage
func (m *Metrics) ObserveStage(kind, stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDur.WithLabelValues(kind, stage).Observe(time.Since(start).Seconds())
}

// RecordLoad counts a finished load and, on success, its row count
func (m *Metrics) RecordLoad(kind, status string, rows int) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(kind, status).Inc()
	if status == "completed" {
		m.rows.WithLabelValues(kind).Set(float64(rows))
	}
}

// RecordDrift counts each zero-filled measure column
func (m *Metrics) RecordDrift(kind string, columns []string) {
	if m == nil {
		return
	}
	for _, c := range columns {
		m.drift.WithLabelValues(kind, c).Inc()
	}
}
