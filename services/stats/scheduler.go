package stats

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

// Scheduler periodically refreshes every active profile.
type Scheduler struct {
	svc      *Service
	interval time.Duration
}

// NewScheduler returns a scheduler refreshing at interval, defaulting to the
// staleness window when the interval is unset.
func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{svc: svc, interval: interval}
}

// Start blocks, running RunAll on every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[scheduler] refreshing every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[scheduler] stopped")
			return
		case <-ticker.C:
			s.RunAll(ctx)
		}
	}
}

// RunAll refreshes every active profile. One profile's failure is recorded on
// its own snapshot row and never stops the remaining profiles; panics are
// contained the same way.
func (s *Scheduler) RunAll(ctx context.Context) {
	runID := uuid.NewString()

	profiles, err := s.svc.ActiveProfiles()
	if err != nil {
		log.Printf("[scheduler] run %s: list profiles: %v", runID, err)
		return
	}

	var failed atomic.Int32
	var wg conc.WaitGroup
	for _, profile := range profiles {
		profile := profile
		wg.Go(func() {
			if err := s.svc.Sync(ctx, &profile); err != nil {
				failed.Add(1)
				log.Printf("[scheduler] run %s: sync %s failed: %v", runID, profile.Username, err)
			}
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		log.Printf("[scheduler] run %s: recovered panic: %v", runID, recovered.Value)
	}

	log.Printf("[scheduler] run %s: processed %d profiles (%d failed)", runID, len(profiles), failed.Load())
}
