package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring module.
type Metrics struct {
	// Scoring outcomes by risk tier and classification flag
	Outcomes *prometheus.CounterVec

	// Distribution of eligible total scores
	TotalScore prometheus.Histogram

	// Selection keys dropped before scoring because they name no catalog criterion
	UnknownSelections prometheus.Counter

	ScoreLatency prometheus.Histogram
}

// NewWithRegistry registers scoring metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sle_scoring_outcomes_total",
			Help: "Total scoring outcomes by risk tier and classification result",
		}, []string{"tier", "classified"}),

		TotalScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sle_scoring_total_score",
			Help:    "Distribution of total scores for ANA-positive requests",
			Buckets: []float64{0, 5, 10, 15, 20, 25, 30, 40, 50},
		}),

		UnknownSelections: f.NewCounter(prometheus.CounterOpts{
			Name: "sle_scoring_unknown_selections_total",
			Help: "Selection keys dropped because they are not catalog criteria",
		}),

		ScoreLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sle_scoring_duration_seconds",
			Help:    "Duration of score computation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
	}
}

// ObserveOutcome records one scoring result.
func (m *Metrics) ObserveOutcome(tier string, classified, eligible bool, total int) {
	if m == nil {
		return
	}
	label := "false"
	if classified {
		label = "true"
	}
	m.Outcomes.WithLabelValues(tier, label).Inc()
	if eligible {
		m.TotalScore.Observe(float64(total))
	}
}

// AddUnknownSelections counts dropped selection keys.
func (m *Metrics) AddUnknownSelections(n int) {
	if m != nil && n > 0 {
		m.UnknownSelections.Add(float64(n))
	}
}

// ObserveScoreLatency records how long scoring took.
func (m *Metrics) ObserveScoreLatency(d time.Duration) {
	if m != nil {
		m.ScoreLatency.Observe(d.Seconds())
	}
}
