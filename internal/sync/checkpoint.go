package sync

import (
	"context"
	"errors"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

const checkpointComponent = "CheckpointTracker"

// CheckpointTracker stores a per-development last-financial-sync timestamp
// so long backfills can resume without redoing recent work. Skipping only
// covers the financial recomputation; the caller still refreshes the
// development's activation state.
type CheckpointTracker struct {
	storage *store.Storage
	log     *logger.Logger
	now     func() time.Time
}

func NewCheckpointTracker(storage *store.Storage, log *logger.Logger) *CheckpointTracker {
	return &CheckpointTracker{storage: storage, log: log, now: time.Now}
}

// ShouldSkip reports whether the development completed a financial sync
// within the given window. Lookup failures never skip: a broken checkpoint
// read costs a redundant recomputation, not missed data.
func (t *CheckpointTracker) ShouldSkip(ctx context.Context, developmentID int64, within time.Duration) bool {
	if within <= 0 {
		return false
	}

	cp, err := t.storage.Checkpoints.Get(ctx, developmentID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			t.log.Warn(checkpointComponent, "Checkpoint lookup failed, not skipping: development=%d err=%v", developmentID, err)
		}
		return false
	}

	age := t.now().Sub(cp.LastFinancialSyncAt)
	if age < within {
		t.log.Debug(checkpointComponent, "Development synced %s ago, skipping financial recompute: development=%d", age.Round(time.Minute), developmentID)
		return true
	}
	return false
}

// MarkSynced records a successful financial sync.
func (t *CheckpointTracker) MarkSynced(ctx context.Context, developmentID int64, at time.Time) error {
	return t.storage.Checkpoints.Set(ctx, developmentID, at)
}
