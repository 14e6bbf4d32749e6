// internal/matchwindow/scheduler.go

package matchwindow

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the background expiry sweep and reminder pass. Both
// are optimizations: lazy expiry keeps window reads correct even when
// the scheduler is down.
type Scheduler struct {
	service       Service
	sweepInterval time.Duration
}

func NewScheduler(service Service, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{service: service, sweepInterval: sweepInterval}
}

func (s *Scheduler) Start(ctx context.Context) {
	// Expire past-due windows every few minutes
	go s.runEvery(ctx, s.sweepInterval, s.service.ExpireDueWindows)

	// Expiration reminders every hour
	go s.runEvery(ctx, time.Hour, s.service.SendExpiryReminders)
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, task func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				log.Printf("Scheduled task failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
