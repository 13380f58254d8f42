// Package checkpoint implements the version tracker and the startup
// resume/recovery logic for each processor mode.
package checkpoint

import (
	"context"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// Store is the persistence boundary the tracker and startup resolver
// consume. pkg/database's *Client satisfies this structurally; pkg/database
// does not import this package.
type Store interface {
	GetProcessorStatus(ctx context.Context, processorID string) (*models.ProcessorStatus, error)
	UpsertProcessorStatus(ctx context.Context, status *models.ProcessorStatus) error

	GetBackfillStatus(ctx context.Context, processorID, backfillID string) (*models.BackfillProcessorStatus, error)
	UpsertBackfillStatus(ctx context.Context, status *models.BackfillProcessorStatus, overwrite bool) error

	GetChainID(ctx context.Context, processorID string) (uint64, bool, error)
	RecordChainID(ctx context.Context, processorID string, chainID uint64) error
}
