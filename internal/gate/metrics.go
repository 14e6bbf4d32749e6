package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_transitions_total",
			Help: "Total number of gate status transitions",
		},
		[]string{"status"},
	)

	gateEvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_evaluations_total",
			Help: "Total number of gate evaluator runs",
		},
	)

	verificationUploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_verification_uploads_total",
			Help: "Total number of verification documents uploaded",
		},
	)

	adminReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_admin_reviews_total",
			Help: "Total number of admin review decisions",
		},
		[]string{"kind", "outcome"},
	)
)

func RecordTransition(status string) {
	gateTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordEvaluation() {
	gateEvaluationsTotal.Inc()
}

func RecordVerificationUpload() {
	verificationUploadsTotal.Inc()
}

func RecordAdminReview(kind string, approved bool) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	adminReviewsTotal.WithLabelValues(kind, outcome).Inc()
}
