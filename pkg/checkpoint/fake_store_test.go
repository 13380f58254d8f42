package checkpoint

import (
	"context"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/database"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	processorStatus map[string]*models.ProcessorStatus
	backfillStatus  map[string]*models.BackfillProcessorStatus
	chainIDs        map[string]uint64

	upsertProcessorCalls int
	upsertBackfillCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		processorStatus: map[string]*models.ProcessorStatus{},
		backfillStatus:  map[string]*models.BackfillProcessorStatus{},
		chainIDs:        map[string]uint64{},
	}
}

func (f *fakeStore) GetProcessorStatus(ctx context.Context, processorID string) (*models.ProcessorStatus, error) {
	s, ok := f.processorStatus[processorID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) UpsertProcessorStatus(ctx context.Context, status *models.ProcessorStatus) error {
	f.upsertProcessorCalls++
	existing, ok := f.processorStatus[status.Processor]
	if ok && existing.LastSuccessVersion > status.LastSuccessVersion {
		return nil
	}
	cp := *status
	f.processorStatus[status.Processor] = &cp
	return nil
}

func backfillKey(processorID, backfillID string) string { return processorID + "::" + backfillID }

func (f *fakeStore) GetBackfillStatus(ctx context.Context, processorID, backfillID string) (*models.BackfillProcessorStatus, error) {
	s, ok := f.backfillStatus[backfillKey(processorID, backfillID)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) UpsertBackfillStatus(ctx context.Context, status *models.BackfillProcessorStatus, overwrite bool) error {
	f.upsertBackfillCalls++
	key := backfillKey(status.Processor, status.BackfillAlias)
	existing, ok := f.backfillStatus[key]
	if !overwrite && ok && existing.LastSuccessVersion > status.LastSuccessVersion {
		return nil
	}
	cp := *status
	f.backfillStatus[key] = &cp
	return nil
}

func (f *fakeStore) GetChainID(ctx context.Context, processorID string) (uint64, bool, error) {
	v, ok := f.chainIDs[processorID]
	return v, ok, nil
}

func (f *fakeStore) RecordChainID(ctx context.Context, processorID string, chainID uint64) error {
	f.chainIDs[processorID] = chainID
	return nil
}
