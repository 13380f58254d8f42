// Package indexer wires configuration, the relational store, the
// marketplace registry and the transaction stream into a runnable pipeline
// for the processor mode a config.AppConfig resolves to.
package indexer

import (
	"context"
	"fmt"
	"log"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/checkpoint"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/database"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/pipeline"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/reduce"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/remap"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/server"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

// Indexer owns every long-lived component of one run and exposes the
// lifecycle the CLI drives: Run blocks until the stream drains or its
// context is cancelled, and Close tears everything down in reverse order.
type Indexer struct {
	cfg *config.AppConfig

	db       *database.Client
	server   *server.Server
	tracker  *checkpoint.Tracker
	pipeline *pipeline.Pipeline

	resolution checkpoint.Resolution
	logger     *log.Logger
}

// Bootstrap loads configuration, opens the database, applies schema
// migrations, builds the marketplace registry, checks the stream's chain id
// and resolves the starting version, then constructs the pipeline around
// streamClient. streamClient is the one external-contract dependency this
// repo does not implement (the upstream gRPC transaction stream is outside
// this module's scope); callers supply it, or stream.FakeClient loaded via
// stream.LoadFixture for the testing processor mode.
func Bootstrap(ctx context.Context, cfg *config.AppConfig, streamClient stream.Client, logger *log.Logger) (*Indexer, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[Indexer] ", log.LstdFlags)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := database.NewClient(cfg.DB, database.WithLogger(log.New(log.Writer(), "[Database] ", log.LstdFlags)))
	if err != nil {
		return nil, fmt.Errorf("indexer: open database: %w", err)
	}
	if err := db.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: apply migrations: %w", err)
	}

	marketplaceConfigs, err := config.LoadMarketplaceConfigs(cfg.MarketplaceConfigPaths)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: load marketplace configs: %w", err)
	}
	registry, err := config.BuildRegistry(logger, marketplaceConfigs)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: build registry: %w", err)
	}

	chainID, err := streamClient.ChainID(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: fetch chain id: %w", err)
	}
	if err := checkpoint.CheckChainID(ctx, db, cfg.ProcessorID, chainID); err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: %w", err)
	}

	resolution, err := checkpoint.Resolve(ctx, db, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: resolve starting version: %w", err)
	}

	tracker := checkpoint.NewTracker(db, cfg.ProcessorMode, cfg.ProcessorID, resolution,
		checkpoint.WithTrackerLogger(log.New(log.Writer(), "[VersionTracker] ", log.LstdFlags)))
	if cfg.ProcessorMode == config.ModeBackfill {
		tracker.SetBackfillID(cfg.Backfill.BackfillID)
	}

	writer := database.NewWriter(db)
	eventRemap := remap.NewEventRemapper(registry)
	resourceRemap := remap.NewResourceRemapper(registry)
	reducer := reduce.NewReducer()

	p := pipeline.New(streamClient, eventRemap, resourceRemap, reducer, writer, tracker,
		log.New(log.Writer(), "[Pipeline] ", log.LstdFlags))

	srv := server.New(cfg.Server.MetricsAddr, db, log.New(log.Writer(), "[Server] ", log.LstdFlags))

	return &Indexer{
		cfg:        cfg,
		db:         db,
		server:     srv,
		tracker:    tracker,
		pipeline:   p,
		resolution: resolution,
		logger:     logger,
	}, nil
}

// Run starts the observability server and version tracker, then drives the
// pipeline from the resolved starting version until it drains or ctx is
// cancelled.
func (ix *Indexer) Run(ctx context.Context) error {
	if ix.resolution.AlreadyComplete {
		ix.logger.Printf("backfill already complete at version %d, nothing to do", ix.resolution.StartingVersion)
		return nil
	}

	ix.server.Start()
	ix.tracker.Start(ctx)

	ix.logger.Printf("starting pipeline at version %d", ix.resolution.StartingVersion)
	err := ix.pipeline.Run(ctx, ix.resolution.StartingVersion, ix.resolution.EndingVersion)

	if stopErr := ix.tracker.Stop(context.Background()); stopErr != nil && err == nil {
		err = fmt.Errorf("indexer: flush final checkpoint: %w", stopErr)
	}
	return err
}

// Close releases the database connection pool and stops the HTTP server.
func (ix *Indexer) Close(ctx context.Context) error {
	if err := ix.server.Shutdown(ctx); err != nil {
		ix.logger.Printf("server shutdown: %v", err)
	}
	return ix.db.Close()
}
