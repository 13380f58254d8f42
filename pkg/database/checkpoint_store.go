package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// GetProcessorStatus reads the live-mode checkpoint row, or ErrNotFound if
// the processor has never run.
func (c *Client) GetProcessorStatus(ctx context.Context, processorID string) (*models.ProcessorStatus, error) {
	var s models.ProcessorStatus
	err := c.db.QueryRowContext(ctx,
		`SELECT processor, last_success_version, last_updated, last_transaction_timestamp
		 FROM processor_status WHERE processor = $1`, processorID,
	).Scan(&s.Processor, &s.LastSuccessVersion, &s.LastUpdated, &s.LastTransactionTimestamp)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get processor status: %w", err)
	}
	return &s, nil
}

// UpsertProcessorStatus writes the live checkpoint, guarded so the stored
// last_success_version never moves backwards.
func (c *Client) UpsertProcessorStatus(ctx context.Context, s *models.ProcessorStatus) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO processor_status (processor, last_success_version, last_updated, last_transaction_timestamp)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (processor) DO UPDATE SET
			last_success_version = EXCLUDED.last_success_version,
			last_updated = EXCLUDED.last_updated,
			last_transaction_timestamp = EXCLUDED.last_transaction_timestamp
		WHERE processor_status.last_success_version <= EXCLUDED.last_success_version
	`, s.Processor, s.LastSuccessVersion, s.LastTransactionTimestamp)
	if err != nil {
		return fmt.Errorf("database: upsert processor status: %w", err)
	}
	return nil
}

// GetBackfillStatus reads the backfill-mode checkpoint row.
func (c *Client) GetBackfillStatus(ctx context.Context, processorID, backfillID string) (*models.BackfillProcessorStatus, error) {
	var s models.BackfillProcessorStatus
	err := c.db.QueryRowContext(ctx, `
		SELECT processor, backfill_alias, backfill_status, last_success_version, last_updated,
		       last_transaction_timestamp, backfill_start_version, backfill_end_version
		FROM backfill_processor_status WHERE processor = $1 AND backfill_alias = $2
	`, processorID, backfillID).Scan(
		&s.Processor, &s.BackfillAlias, &s.BackfillStatus, &s.LastSuccessVersion, &s.LastUpdated,
		&s.LastTransactionTimestamp, &s.BackfillStartVersion, &s.BackfillEndVersion,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get backfill status: %w", err)
	}
	return &s, nil
}

// UpsertBackfillStatus writes the backfill checkpoint. When overwrite is
// true, the monotonicity guard is bypassed entirely (used to restart a
// backfill from its configured initial_starting_version).
func (c *Client) UpsertBackfillStatus(ctx context.Context, s *models.BackfillProcessorStatus, overwrite bool) error {
	guard := "backfill_processor_status.last_success_version <= EXCLUDED.last_success_version"
	if overwrite {
		guard = "TRUE"
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO backfill_processor_status (
			processor, backfill_alias, backfill_status, last_success_version,
			last_updated, last_transaction_timestamp, backfill_start_version, backfill_end_version
		) VALUES ($1, $2, $3, $4, now(), $5, $6, $7)
		ON CONFLICT (processor, backfill_alias) DO UPDATE SET
			backfill_status = EXCLUDED.backfill_status,
			last_success_version = EXCLUDED.last_success_version,
			last_updated = EXCLUDED.last_updated,
			last_transaction_timestamp = EXCLUDED.last_transaction_timestamp,
			backfill_start_version = EXCLUDED.backfill_start_version,
			backfill_end_version = EXCLUDED.backfill_end_version
		WHERE `+guard,
		s.Processor, s.BackfillAlias, s.BackfillStatus, s.LastSuccessVersion,
		s.LastTransactionTimestamp, s.BackfillStartVersion, s.BackfillEndVersion,
	)
	if err != nil {
		return fmt.Errorf("database: upsert backfill status: %w", err)
	}
	return nil
}

// GetChainID returns the chain id previously recorded for processorID, and
// false if none has been recorded yet.
func (c *Client) GetChainID(ctx context.Context, processorID string) (uint64, bool, error) {
	var chainID int64
	err := c.db.QueryRowContext(ctx, `SELECT chain_id FROM chain_metadata WHERE processor = $1`, processorID).Scan(&chainID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("database: get chain id: %w", err)
	}
	return uint64(chainID), true, nil
}

// RecordChainID stores the chain id on first run.
func (c *Client) RecordChainID(ctx context.Context, processorID string, chainID uint64) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO chain_metadata (processor, chain_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		processorID, int64(chainID),
	)
	if err != nil {
		return fmt.Errorf("database: record chain id: %w", err)
	}
	return nil
}
