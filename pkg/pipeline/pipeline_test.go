package pipeline

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/checkpoint"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/database"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/reduce"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/remap"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

// memStore is an in-memory checkpoint.Store for the pipeline integration test.
type memStore struct {
	mu     sync.Mutex
	status map[string]*models.ProcessorStatus
}

func newMemStore() *memStore {
	return &memStore{status: map[string]*models.ProcessorStatus{}}
}

func (m *memStore) GetProcessorStatus(ctx context.Context, processorID string) (*models.ProcessorStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.status[processorID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s, nil
}

func (m *memStore) UpsertProcessorStatus(ctx context.Context, status *models.ProcessorStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *status
	m.status[status.Processor] = &cp
	return nil
}

func (m *memStore) GetBackfillStatus(ctx context.Context, processorID, backfillID string) (*models.BackfillProcessorStatus, error) {
	return nil, database.ErrNotFound
}
func (m *memStore) UpsertBackfillStatus(ctx context.Context, status *models.BackfillProcessorStatus, overwrite bool) error {
	return nil
}
func (m *memStore) GetChainID(ctx context.Context, processorID string) (uint64, bool, error) {
	return 0, false, nil
}
func (m *memStore) RecordChainID(ctx context.Context, processorID string, chainID uint64) error {
	return nil
}

// recordingWriter captures every WriteBatch call instead of touching a
// real database.
type recordingWriter struct {
	mu        sync.Mutex
	activities []*models.Activity
	listings   []*models.CurrentListing
}

func (w *recordingWriter) WriteBatch(ctx context.Context, activities []*models.Activity, listings []*models.CurrentListing, tokenOffers []*models.CurrentTokenOffer, collectionOffers []*models.CurrentCollectionOffer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activities = append(w.activities, activities...)
	w.listings = append(w.listings, listings...)
	return nil
}

func wapalRegistry(t *testing.T) *config.Registry {
	t.Helper()
	cfg := &config.MarketplaceConfig{
		Name: "wapal",
		EventModelMapping: map[string]string{
			"0xcafe::wapal_marketplace::ListingPlacedEvent": "place_listing",
		},
		Events: map[string]config.EventRemapping{
			"0xcafe::wapal_marketplace::ListingPlacedEvent": {
				EventFields: map[string][]config.DbColumn{
					"$.token_data_id": {{Table: "activities", Column: "token_data_id"}},
					"$.seller":        {{Table: "activities", Column: "seller"}, {Table: "current_listings", Column: "seller"}},
					"$.price":         {{Table: "activities", Column: "price"}, {Table: "current_listings", Column: "price"}},
				},
			},
		},
	}
	reg, err := config.BuildRegistry(nil, []*config.MarketplaceConfig{cfg})
	require.NoError(t, err)
	return reg
}

func TestPipeline_RunDrainsFakeClientAndAdvancesTracker(t *testing.T) {
	reg := wapalRegistry(t)
	txn := stream.Transaction{
		Version:    10,
		Timestamp:  time.Unix(1700000000, 0).UTC(),
		IsUserTxn:  true,
		HasTxnInfo: true,
		Events: []stream.Event{
			{
				TypeStr: "0xcafe::wapal_marketplace::ListingPlacedEvent",
				Data:    []byte(`{"token_data_id":"0xabc","seller":"0xdef","price":"100"}`),
			},
		},
	}
	fakeClient := &stream.FakeClient{
		Batches: []stream.Batch{
			{
				Transactions: []stream.Transaction{txn},
				StartVersion: 10,
				EndVersion:   10,
				EndTimestamp: txn.Timestamp,
			},
		},
	}

	store := newMemStore()
	tracker := checkpoint.NewTracker(store, config.ModeDefault, "proc-1", checkpoint.Resolution{StartingVersion: 0},
		checkpoint.WithFlushInterval(time.Hour))
	tracker.Start(context.Background())

	writer := &recordingWriter{}

	p := New(fakeClient, remap.NewEventRemapper(reg), remap.NewResourceRemapper(reg), reduce.NewReducer(), writer, tracker, log.New(log.Writer(), "[test] ", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := p.Run(ctx, 0, nil)
	require.NoError(t, err)
	require.NoError(t, tracker.Stop(context.Background()))

	writer.mu.Lock()
	defer writer.mu.Unlock()
	require.Len(t, writer.activities, 1)
	require.Len(t, writer.listings, 1)
	assert.Equal(t, "0xdef", writer.listings[0].Seller)

	status, err := store.GetProcessorStatus(context.Background(), "proc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), status.LastSuccessVersion)
}
