package scheduler

import (
	"context"
	"log"
	"time"

	"mailwiki-backend/internal/sync/usecase"
)

// SyncScheduler runs the batch sync on a fixed interval. Deployments
// that trigger sync through the cron endpoint leave it disabled.
type SyncScheduler struct {
	syncUsecase usecase.SyncUsecase
	interval    time.Duration
	stopChan    chan struct{}
}

func NewSyncScheduler(syncUsecase usecase.SyncUsecase, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		syncUsecase: syncUsecase,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start() {
	if s.interval <= 0 {
		log.Println("[Scheduler] interval not set, scheduler disabled")
		return
	}

	log.Printf("[Scheduler] starting sync scheduler (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.run()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.run()
			case <-s.stopChan:
				log.Println("[Scheduler] scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

func (s *SyncScheduler) run() {
	result := s.syncUsecase.RunSync(context.Background())
	if !result.Success {
		log.Printf("[Scheduler] sync run failed: %s", result.Details)
		return
	}

	var processed, successful int
	for _, r := range result.Results {
		processed += r.Processed
		successful += r.Successful
	}
	log.Printf("[Scheduler] sync run completed: %d users, %d messages processed, %d imported",
		result.TotalUsers, processed, successful)
}
