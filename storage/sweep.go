package storage

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tcriess/lightspeed-rooms/globals"
)

// RefLister yields the blob references that are still in use.
type RefLister interface {
	ImageRefs(ctx context.Context) ([]string, error)
}

// Sweeper removes blobs which are no longer referenced, f.e. replaced room images or uploads of failed writes.
// Blobs younger than the grace period are kept, so uploads whose transaction is still running survive.
type Sweeper struct {
	store *LocalStore
	refs  RefLister
	grace time.Duration
	now   func() time.Time
}

func NewSweeper(store *LocalStore, refs RefLister, grace time.Duration) *Sweeper {
	return &Sweeper{store: store, refs: refs, grace: grace, now: time.Now}
}

// Sweep deletes unreferenced blobs and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.refs.ImageRefs(ctx)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		inUse[ref] = struct{}{}
	}
	blobs, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, b := range blobs {
		if _, ok := inUse[b.Ref]; ok || b.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, b.Ref); err != nil {
			globals.AppLogger.Error("could not remove orphaned blob", "ref", b.Ref, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Schedule returns a (not yet started) cron runner which sweeps on the cron expression schedule.
func (s *Sweeper) Schedule(schedule string) (*cron.Cron, error) {
	cronRunner := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := cronRunner.AddFunc(schedule, func() {
		n, err := s.Sweep(context.Background())
		if err != nil {
			globals.AppLogger.Error("sweep failed", "error", err)
			return
		}
		globals.AppLogger.Info("swept orphaned blobs", "removed", n)
	})
	if err != nil {
		return nil, err
	}
	return cronRunner, nil
}
