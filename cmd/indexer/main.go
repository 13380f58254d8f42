package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/database"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/indexer"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

func main() {
	root := &cobra.Command{Use: "indexer"}
	root.AddCommand(runCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(testingCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func configFlag(cmd *cobra.Command) *string {
	return cmd.Flags().String("config", "config.yaml", "path to the indexer's YAML configuration document")
}

// runCmd loads the configuration for the live or backfill processor mode,
// generating a backfill_id when one is needed and unset, and then returns
// an error: no stream.Client is wired here. The upstream gRPC stream client
// is outside this module's scope (it has a fixed, externally-defined wire
// contract); an operator passes a concrete stream.Client implementation to
// indexer.Bootstrap.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the indexer in its configured processor mode (default or backfill)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.ProcessorMode == config.ModeTesting {
				return fmt.Errorf("run: processor_mode is %q; use the testing subcommand instead", cfg.ProcessorMode)
			}
			if cfg.ProcessorMode == config.ModeBackfill && cfg.Backfill.BackfillID == "" {
				cfg.Backfill.BackfillID = uuid.NewString()
				log.Printf("backfill_config.backfill_id unset, generated %s", cfg.Backfill.BackfillID)
			}

			return fmt.Errorf("run: no stream.Client wired for %s; the upstream transaction stream is an external dependency outside this module, supply one via pkg/indexer.Bootstrap directly", cfg.TransactionStream.Endpoint)
		},
	}
	configFlag(cmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			db, err := database.NewClient(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			if err := db.MigrateUp(ctx); err != nil {
				return err
			}
			log.Println("migrations applied")
			return nil
		},
	}
	configFlag(cmd)
	return cmd
}

// testingCmd drives the pipeline against a fixture file of pre-recorded
// batches instead of a live transaction stream. In testing mode no
// checkpoint is ever written.
func testingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testing",
		Short: "replay a fixture file of batches through the pipeline without writing checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			fixturePath, _ := cmd.Flags().GetString("fixture")

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg.ProcessorMode = config.ModeTesting

			batches, err := stream.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			chainID := uint64(0)
			if len(batches) > 0 {
				chainID = batches[0].ChainID
			}
			client := &stream.FakeClient{Batches: batches, ChainIDValue: chainID}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ix, err := indexer.Bootstrap(ctx, cfg, client, nil)
			if err != nil {
				return err
			}
			defer ix.Close(context.Background())

			return ix.Run(ctx)
		},
	}
	configFlag(cmd)
	cmd.Flags().String("fixture", "", "path to a JSON fixture file of batches (required)")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
