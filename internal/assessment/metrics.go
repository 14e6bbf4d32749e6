package assessment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	responsesSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_responses_submitted_total",
			Help: "Total number of assessment responses saved",
		},
	)

	compatibilityComputationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_compatibility_computations_total",
			Help: "Total number of compatibility recomputations",
		},
	)

	compatibilityCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_compatibility_cache_hits_total",
			Help: "Total number of compatibility cache hits",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_compatibility_scores",
			Help:    "Distribution of overall compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

func RecordResponsesSubmitted(count int) {
	responsesSubmittedTotal.Add(float64(count))
}

func RecordComputation(overall float64) {
	compatibilityComputationsTotal.Inc()
	compatibilityScores.Observe(overall)
}

func RecordCacheHit() {
	compatibilityCacheHitsTotal.Inc()
}
