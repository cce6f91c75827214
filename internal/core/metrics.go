package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricFilesTotal        = "files_total"
	MetricRowsReadTotal     = "rows_read_total"
	MetricRowsUpsertedTotal = "rows_upserted_total"
	MetricDurationSeconds   = "duration_seconds"

	metricsNamespace = "cusip"
	metricsSubsystem = "load"
)

// Metrics records per-file load outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	files        *prometheus.CounterVec
	rowsRead     *prometheus.CounterVec
	rowsUpserted *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics creates the load collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      MetricFilesTotal,
				Help:      "Files processed, by kind and terminal status.",
			},
			[]string{"kind", "status"},
		),
		rowsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      MetricRowsReadTotal,
				Help:      "Data records read after sanitization.",
			},
			[]string{"kind"},
		),
		rowsUpserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      MetricRowsUpsertedTotal,
				Help:      "Rows inserted or updated in target tables.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      MetricDurationSeconds,
				Help:      "Wall time of one file load.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(m.files, m.rowsRead, m.rowsUpserted, m.duration)
	return m
}

func (m *Metrics) observe(r LoadResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	kind := string(r.Type)
	m.files.WithLabelValues(kind, string(r.Status)).Inc()
	m.rowsRead.WithLabelValues(kind).Add(float64(r.RowsRead))
	m.rowsUpserted.WithLabelValues(kind).Add(float64(r.RowsUpserted))
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
