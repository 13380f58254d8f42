package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_StopFlushesPendingVersion(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store, config.ModeDefault, "proc-1", Resolution{StartingVersion: 0},
		WithFlushInterval(time.Hour))

	ctx := context.Background()
	tracker.Start(ctx)
	tracker.Advance(42, time.Unix(0, 0))

	require.NoError(t, tracker.Stop(ctx))

	status, err := store.GetProcessorStatus(ctx, "proc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), status.LastSuccessVersion)
}

func TestTracker_TestingModeNeverWrites(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store, config.ModeTesting, "proc-1", Resolution{StartingVersion: 0},
		WithFlushInterval(time.Hour))

	ctx := context.Background()
	tracker.Start(ctx)
	tracker.Advance(42, time.Unix(0, 0))
	require.NoError(t, tracker.Stop(ctx))

	assert.Equal(t, 0, store.upsertProcessorCalls)
	_, err := store.GetProcessorStatus(ctx, "proc-1")
	assert.Error(t, err)
}

func TestTracker_BackfillCompletesWhenVersionReachesEnd(t *testing.T) {
	store := newFakeStore()
	end := int64(100)
	tracker := NewTracker(store, config.ModeBackfill, "proc-1",
		Resolution{StartingVersion: 0, EndingVersion: &end},
		WithFlushInterval(time.Hour))
	tracker.SetBackfillID("bf-1")

	ctx := context.Background()
	tracker.Start(ctx)
	tracker.Advance(100, time.Unix(0, 0))
	require.NoError(t, tracker.Stop(ctx))

	status, err := store.GetBackfillStatus(ctx, "proc-1", "bf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), status.LastSuccessVersion)
	assert.Equal(t, models.BackfillComplete, status.BackfillStatus)
}

func TestTracker_AdvanceIgnoresOutOfOrderLowerVersion(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store, config.ModeDefault, "proc-1", Resolution{StartingVersion: 0},
		WithFlushInterval(time.Hour))

	ctx := context.Background()
	tracker.Start(ctx)
	tracker.Advance(50, time.Unix(0, 0))
	tracker.Advance(10, time.Unix(0, 0))
	require.NoError(t, tracker.Stop(ctx))

	status, err := store.GetProcessorStatus(ctx, "proc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), status.LastSuccessVersion)
}

func TestTracker_StopWithoutAdvanceIsNoop(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store, config.ModeDefault, "proc-1", Resolution{StartingVersion: 0},
		WithFlushInterval(time.Hour))

	ctx := context.Background()
	tracker.Start(ctx)
	require.NoError(t, tracker.Stop(ctx))

	assert.Equal(t, 0, store.upsertProcessorCalls)
}
