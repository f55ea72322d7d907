package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/velora-hq/onboardai/internal/domain"
)

// SyncRunner runs a knowledge sync and reports the schedule.
type SyncRunner interface {
	Run(ctx context.Context) (*domain.SyncResult, error)
	Status(ctx context.Context) (*domain.SyncState, error)
}

// IntelRefresher refreshes the competitor intel cache.
type IntelRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// SyncWorker runs the scheduled knowledge sync and intel refresh when
// the stored next_sync_at comes due.
type SyncWorker struct {
	sync  SyncRunner
	intel IntelRefresher
	now   func() time.Time
}

// NewSyncWorker creates a new SyncWorker instance
func NewSyncWorker(sync SyncRunner, intel IntelRefresher) *SyncWorker {
	return &SyncWorker{
		sync:  sync,
		intel: intel,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *SyncWorker) ProcessJobs(ctx context.Context) error {
	state, err := w.sync.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync schedule: %w", err)
	}

	// Before the first sync the stored schedule is synthesized one
	// interval out, so a fresh deployment syncs on its first due tick
	// rather than immediately at boot.
	if w.now().Before(state.NextSyncAt) {
		return nil
	}

	log.Println("Scheduled sync is due, running")

	result, err := w.sync.Run(ctx)
	if err != nil {
		return fmt.Errorf("scheduled sync failed: %w", err)
	}
	log.Printf("Scheduled sync complete: notion=%d github=%d slack=%d", result.Notion, result.GitHub, result.Slack)

	added, err := w.intel.Refresh(ctx)
	if err != nil {
		log.Printf("Scheduled intel refresh failed: %v", err)
		return nil
	}
	log.Printf("Scheduled intel refresh complete: %d new items", added)

	return nil
}
