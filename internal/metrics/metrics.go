// Package metrics exposes Prometheus counters for the reconciliation pipeline.
//
// Exposed series:
//
//	attendance_punches_processed_total           punches entering the pipeline, by source
//	attendance_punches_removed_total             punches dropped, by reason
//	attendance_fine_pairs_total                  cancelled double-tap pairs
//	attendance_days_processed_total              ProcessedAttendance records produced
//	attendance_pipeline_duration_seconds         one Reconcile call
//	attendance_cache_lookups_total               coverage checks, by result (hit|fetch)
//	attendance_refresh_staff                     staff members handled by the last refresh job
package metrics

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline metrics. A nil Collector records nothing.
type Collector struct {
	punchesProcessed *prometheus.CounterVec
	punchesRemoved   *prometheus.CounterVec
	finePairs        prometheus.Counter
	daysProcessed    prometheus.Counter
	pipelineDuration prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
	refreshStaff     prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		punchesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_punches_processed_total",
			Help: "Total number of punches entering the reconciliation pipeline",
		}, []string{"source"}),
		punchesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_punches_removed_total",
			Help: "Total number of punches removed by the filters",
		}, []string{"reason"}),
		finePairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_fine_pairs_total",
			Help: "Total number of opener/closer pairs cancelled as double taps",
		}),
		daysProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_days_processed_total",
			Help: "Total number of staff-days produced by the aggregator",
		}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_pipeline_duration_seconds",
			Help:    "Duration of one reconciliation run in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_cache_lookups_total",
			Help: "Coverage lookups by result",
		}, []string{"result"}),
		refreshStaff: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attendance_refresh_staff",
			Help: "Staff members reconciled by the last refresh job",
		}),
	}

	prometheus.MustRegister(c.punchesProcessed)
	prometheus.MustRegister(c.punchesRemoved)
	prometheus.MustRegister(c.finePairs)
	prometheus.MustRegister(c.daysProcessed)
	prometheus.MustRegister(c.pipelineDuration)
	prometheus.MustRegister(c.cacheLookups)
	prometheus.MustRegister(c.refreshStaff)

	return c
}

// RecordPipeline records the outcome of one reconciliation run.
func (c *Collector) RecordPipeline(cleaned attendance.CleanedPunches, days int, seconds float64) {
	if c == nil {
		return
	}
	c.punchesProcessed.WithLabelValues(string(attendance.SourceDevice)).Add(float64(len(cleaned.DeviceLogs)))
	c.punchesProcessed.WithLabelValues(string(attendance.SourceCorrection)).Add(float64(len(cleaned.CorrectionLogs)))
	for _, r := range cleaned.Removed {
		c.punchesRemoved.WithLabelValues(string(r.Reason)).Inc()
	}
	c.finePairs.Add(float64(len(cleaned.FinePairs)))
	c.daysProcessed.Add(float64(days))
	c.pipelineDuration.Observe(seconds)
}

func (c *Collector) RecordCacheLookup(fetched bool) {
	if c == nil {
		return
	}
	result := "hit"
	if fetched {
		result = "fetch"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

func (c *Collector) SetRefreshStaff(n int) {
	if c == nil {
		return
	}
	c.refreshStaff.Set(float64(n))
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
