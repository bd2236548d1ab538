package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for regression suite runs.
type Metrics struct {
	// Case outcomes by status (PASS/FAIL/SKIP/ERROR)
	CaseResults *prometheus.CounterVec

	RunDuration prometheus.Histogram

	// Normalized-suite cache lookups by result (hit, miss, error)
	CacheLookups *prometheus.CounterVec
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CaseResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sle_testcase_results_total",
			Help: "Regression case outcomes by status",
		}, []string{"status"}),

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sle_testcase_run_duration_seconds",
			Help:    "Wall time of regression suite runs",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sle_testcase_cache_lookups_total",
			Help: "Normalized suite cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveRun records the per-status counts and duration of one run.
func (m *Metrics) ObserveRun(pass, fail, skip, errored int, d time.Duration) {
	if m == nil {
		return
	}
	m.CaseResults.WithLabelValues("PASS").Add(float64(pass))
	m.CaseResults.WithLabelValues("FAIL").Add(float64(fail))
	m.CaseResults.WithLabelValues("SKIP").Add(float64(skip))
	m.CaseResults.WithLabelValues("ERROR").Add(float64(errored))
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) IncCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
