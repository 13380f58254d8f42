package remap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/config"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/stream"
)

func mustRegistry(t *testing.T, cfg *config.MarketplaceConfig) *config.Registry {
	t.Helper()
	reg, err := config.BuildRegistry(nil, []*config.MarketplaceConfig{cfg})
	require.NoError(t, err)
	return reg
}

func wapalConfig() *config.MarketplaceConfig {
	return &config.MarketplaceConfig{
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
}

func TestRemapBatch_PlaceListingEmitsActivityAndListing(t *testing.T) {
	reg := mustRegistry(t, wapalConfig())
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{
		Version:    2382251863,
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

	res, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	require.NoError(t, err)
	require.Len(t, res.Activities, 1)
	require.Len(t, res.Listings, 1)

	a := res.Activities[0]
	assert.Equal(t, models.ActionPlaceListing, a.StandardEventType)
	assert.Equal(t, "wapal", a.Marketplace)
	assert.Equal(t, int64(100), a.Price)
	assert.Equal(t, "0xdef", a.Seller)

	l := res.Listings[0]
	assert.Equal(t, int64(100), l.Price)
	assert.False(t, l.IsDeleted)
	assert.Equal(t, a.TokenDataID, l.TokenDataID)
}

func TestRemapBatch_FrameworkEventSkippedSilently(t *testing.T) {
	reg := mustRegistry(t, wapalConfig())
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{
		Version:    1,
		IsUserTxn:  true,
		HasTxnInfo: true,
		Events: []stream.Event{
			{TypeStr: "0x1::aptos_coin::AptosCoin", Data: []byte(`{}`)},
		},
	}

	res, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	require.NoError(t, err)
	assert.Empty(t, res.Activities)
}

func TestRemapBatch_UnknownNonFrameworkEventTypeSkippedSilently(t *testing.T) {
	reg := mustRegistry(t, wapalConfig())
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{
		Version:    1,
		IsUserTxn:  true,
		HasTxnInfo: true,
		Events: []stream.Event{
			{TypeStr: "0xbeef::some_other_marketplace::SaleEvent", Data: []byte(`{}`)},
		},
	}

	res, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	require.NoError(t, err)
	assert.Empty(t, res.Activities)
}

// TestRemapBatch_EventTypeKeyStandardizationMatchesNonPaddedConfig guards
// the registry keying bug where BuildRegistry stored events under the
// literal config string while the remapper looked them up by the
// standardized qualified type: the config below uses the short,
// non-zero-padded "0xcafe" form that every real marketplace YAML uses,
// exactly as wapalConfig/TestRemapBatch_PlaceListingEmitsActivityAndListing
// already exercise; this test additionally confirms the match holds for a
// second short address under another marketplace name, which
// StandardizeAddress pads identically on both sides of the key.
func TestRemapBatch_EventTypeKeyStandardizationMatchesNonPaddedConfig(t *testing.T) {
	cfg := &config.MarketplaceConfig{
		Name: "tradeport",
		EventModelMapping: map[string]string{
			"0xabc123::tradeport_v2::ListingFilledEvent": "fill_listing",
		},
		Events: map[string]config.EventRemapping{
			"0xabc123::tradeport_v2::ListingFilledEvent": {
				EventFields: map[string][]config.DbColumn{
					"$.token_data_id": {{Table: "activities", Column: "token_data_id"}},
				},
			},
		},
	}
	reg := mustRegistry(t, cfg)
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{
		Version:    1,
		IsUserTxn:  true,
		HasTxnInfo: true,
		Events: []stream.Event{
			{TypeStr: "0xabc123::tradeport_v2::ListingFilledEvent", Data: []byte(`{"token_data_id":"0xabc"}`)},
		},
	}

	res, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	require.NoError(t, err)
	require.Len(t, res.Activities, 1)
	assert.Equal(t, models.ActionFillListing, res.Activities[0].StandardEventType)
}

func TestRemapBatch_TooFewTypeSegmentsSkipped(t *testing.T) {
	reg := mustRegistry(t, wapalConfig())
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{
		Version:    1,
		IsUserTxn:  true,
		HasTxnInfo: true,
		Events: []stream.Event{
			{TypeStr: "bad_type", Data: []byte(`{}`)},
		},
	}

	res, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	require.NoError(t, err)
	assert.Empty(t, res.Activities)
}

func TestRemapBatch_MissingTxnInfoIsBatchFatal(t *testing.T) {
	reg := mustRegistry(t, wapalConfig())
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{Version: 1, IsUserTxn: true, HasTxnInfo: false}
	_, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	assert.Error(t, err)
}

func TestRemapBatch_MalformedEventJSONIsBatchFatal(t *testing.T) {
	reg := mustRegistry(t, wapalConfig())
	remapper := NewEventRemapper(reg)

	txn := stream.Transaction{
		Version:    1,
		IsUserTxn:  true,
		HasTxnInfo: true,
		Events: []stream.Event{
			{TypeStr: "0xcafe::wapal_marketplace::ListingPlacedEvent", Data: []byte(`{not json`)},
		},
	}
	_, err := remapper.RemapBatch(stream.Batch{Transactions: []stream.Transaction{txn}})
	assert.Error(t, err)
}
