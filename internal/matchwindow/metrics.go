// internal/matchwindow/metrics.go

package matchwindow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchwindow_created_total",
		Help: "Total match windows created",
	})

	windowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchwindow_transitions_total",
		Help: "Window state transitions by resulting status",
	}, []string{"status"})

	windowsExpiredBySweep = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchwindow_sweep_expired_total",
		Help: "Windows expired by the background sweep",
	})

	expiryRemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchwindow_expiry_reminders_total",
		Help: "Expiration reminders sent",
	})

	conversationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchwindow_conversations_created_total",
		Help: "Conversations created on mutual confirmation",
	})
)

func RecordCreated()             { windowsCreated.Inc() }
func RecordTransition(s Status)  { windowTransitions.WithLabelValues(string(s)).Inc() }
func RecordSweepExpired(n int)   { windowsExpiredBySweep.Add(float64(n)) }
func RecordExpiryReminder()      { expiryRemindersSent.Inc() }
func RecordConversationCreated() { conversationsCreated.Inc() }
