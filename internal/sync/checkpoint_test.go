package sync

import (
	"context"
	"testing"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
)

func TestCheckpointTracker_ShouldSkip(t *testing.T) {
	storage, fakes := newFakeStores()
	tracker := NewCheckpointTracker(storage, logger.New("error"))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }
	ctx := context.Background()

	// No checkpoint yet.
	if tracker.ShouldSkip(ctx, 1, 20*time.Hour) {
		t.Fatal("must not skip a development that was never synced")
	}

	fakes.checkpoints.byDev[1] = now.Add(-2 * time.Hour)
	if !tracker.ShouldSkip(ctx, 1, 20*time.Hour) {
		t.Fatal("must skip a development synced 2h ago with a 20h window")
	}

	fakes.checkpoints.byDev[1] = now.Add(-25 * time.Hour)
	if tracker.ShouldSkip(ctx, 1, 20*time.Hour) {
		t.Fatal("must not skip a development synced 25h ago with a 20h window")
	}

	// Zero window disables skipping no matter how fresh the checkpoint is.
	fakes.checkpoints.byDev[1] = now
	if tracker.ShouldSkip(ctx, 1, 0) {
		t.Fatal("zero window must disable skipping")
	}
}

func TestCheckpointTracker_MarkSynced(t *testing.T) {
	storage, fakes := newFakeStores()
	tracker := NewCheckpointTracker(storage, logger.New("error"))
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := tracker.MarkSynced(context.Background(), 7, at); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if got := fakes.checkpoints.byDev[7]; !got.Equal(at) {
		t.Fatalf("checkpoint=%s want=%s", got, at)
	}
}
