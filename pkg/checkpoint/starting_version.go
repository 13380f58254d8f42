package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/database"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// Resolution is the resolved starting/ending version pair a Source begins
// streaming from.
type Resolution struct {
	StartingVersion int64
	EndingVersion   *int64
	// AlreadyComplete is set for a backfill whose prior run already
	// reached its ending version with overwrite=false: the caller should
	// finish immediately without starting the stream.
	AlreadyComplete bool
}

// Resolve implements the startup/resume table for the processor's
// configured mode.
func Resolve(ctx context.Context, store Store, cfg *config.AppConfig) (Resolution, error) {
	switch cfg.ProcessorMode {
	case config.ModeDefault:
		return resolveLive(ctx, store, cfg)
	case config.ModeBackfill:
		return resolveBackfill(ctx, store, cfg)
	case config.ModeTesting:
		return resolveTesting(cfg), nil
	default:
		return Resolution{}, fmt.Errorf("checkpoint: unknown processor mode %q", cfg.ProcessorMode)
	}
}

func resolveLive(ctx context.Context, store Store, cfg *config.AppConfig) (Resolution, error) {
	status, err := store.GetProcessorStatus(ctx, cfg.ProcessorID)
	if errors.Is(err, database.ErrNotFound) {
		return Resolution{StartingVersion: cfg.TransactionStream.InitialStartingVersion}, nil
	}
	if err != nil {
		return Resolution{}, err
	}
	start := cfg.TransactionStream.InitialStartingVersion
	if status.LastSuccessVersion > start {
		start = status.LastSuccessVersion
	}
	return Resolution{StartingVersion: start}, nil
}

func resolveBackfill(ctx context.Context, store Store, cfg *config.AppConfig) (Resolution, error) {
	status, err := store.GetBackfillStatus(ctx, cfg.ProcessorID, cfg.Backfill.BackfillID)
	if errors.Is(err, database.ErrNotFound) {
		return Resolution{
			StartingVersion: cfg.Backfill.InitialStartingVersion,
			EndingVersion:   cfg.Backfill.EndingVersion,
		}, nil
	}
	if err != nil {
		return Resolution{}, err
	}

	if cfg.Backfill.OverwriteCheckpoint {
		reset := &models.BackfillProcessorStatus{
			Processor:            cfg.ProcessorID,
			BackfillAlias:        cfg.Backfill.BackfillID,
			BackfillStatus:       models.BackfillInProgress,
			LastSuccessVersion:   0,
			BackfillStartVersion: cfg.Backfill.InitialStartingVersion,
			BackfillEndVersion:   cfg.Backfill.EndingVersion,
		}
		if err := store.UpsertBackfillStatus(ctx, reset, true); err != nil {
			return Resolution{}, err
		}
		return Resolution{
			StartingVersion: cfg.Backfill.InitialStartingVersion,
			EndingVersion:   cfg.Backfill.EndingVersion,
		}, nil
	}

	ending := cfg.Backfill.EndingVersion
	if ending == nil {
		ending = &status.LastSuccessVersion
	}

	if status.BackfillStatus == models.BackfillComplete {
		return Resolution{
			StartingVersion: status.LastSuccessVersion,
			EndingVersion:   ending,
			AlreadyComplete: true,
		}, nil
	}

	return Resolution{
		StartingVersion: status.LastSuccessVersion + 1,
		EndingVersion:   ending,
	}, nil
}

func resolveTesting(cfg *config.AppConfig) Resolution {
	ending := cfg.Testing.EndingVersion
	if ending == nil {
		v := cfg.Testing.OverrideStartingVersion
		ending = &v
	}
	return Resolution{
		StartingVersion: cfg.Testing.OverrideStartingVersion,
		EndingVersion:   ending,
	}
}

// CheckChainID compares the stream's reported chain id to any previously
// recorded value, recording it on first run and failing process-fatally
// on mismatch.
func CheckChainID(ctx context.Context, store Store, processorID string, streamChainID uint64) error {
	recorded, ok, err := store.GetChainID(ctx, processorID)
	if err != nil {
		return err
	}
	if !ok {
		return store.RecordChainID(ctx, processorID, streamChainID)
	}
	if recorded != streamChainID {
		return fmt.Errorf("%w: recorded=%d stream=%d", database.ErrChainIDMismatch, recorded, streamChainID)
	}
	return nil
}
