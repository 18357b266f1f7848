// Package metrics exposes Prometheus instruments for recommendation and
// selection requests.
//
// Usage:
//
//	metrics.RecordRecommendation(metrics.OutcomeMatched, 3)
//	metrics.RecordSelection(metrics.OutcomeOK, 2*time.Millisecond)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var (
	// RecommendationsTotal counts recommendation requests by outcome.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropadvisor_recommendations_total",
			Help: "Total number of crop recommendation requests",
		},
		[]string{"outcome"},
	)

	// RecommendationMatches tracks how many reference records matched a query.
	RecommendationMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cropadvisor_recommendation_matches",
			Help:    "Number of reference records matching a recommendation query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
		},
	)

	// SelectionsTotal counts capacity selections by outcome.
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cropadvisor_selections_total",
			Help: "Total number of capacity selection requests",
		},
		[]string{"outcome"},
	)

	// SelectionDuration tracks time spent building and walking the DP table.
	SelectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cropadvisor_selection_duration_seconds",
			Help:    "Duration of capacity selections in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// DatasetRecords reports the size of the loaded reference table.
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cropadvisor_dataset_records",
			Help: "Number of records in the loaded reference dataset",
		},
	)
)

// RecordRecommendation records one recommendation request.
func RecordRecommendation(outcome string, matches int) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeError {
		RecommendationMatches.Observe(float64(matches))
	}
}

// RecordSelection records one selection request.
func RecordSelection(outcome string, d time.Duration) {
	SelectionsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		SelectionDuration.Observe(d.Seconds())
	}
}

// SetDatasetRecords reports the loaded dataset's size.
func SetDatasetRecords(n int) {
	DatasetRecords.Set(float64(n))
}
