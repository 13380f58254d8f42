package stream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureJSON = `
[
  {
    "start_version": 10,
    "end_version": 10,
    "end_timestamp": "2024-01-01T00:00:00Z",
    "chain_id": 1,
    "transactions": [
      {
        "version": 10,
        "timestamp": "2024-01-01T00:00:00Z",
        "is_user_txn": true,
        "has_txn_info": true,
        "events": [
          {"type": "0xcafe::wapal_marketplace::ListingPlacedEvent", "data": {"price": "100"}, "account_address": "0xcafe"}
        ],
        "changes": [
          {"address": "0xcafe", "type": "0x1::listing::FixedPriceListing", "data": {"price": "100"}}
        ]
      }
    ]
  }
]`

func TestLoadFixture_ParsesBatchesAndRawJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o644))

	batches, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, int64(10), batches[0].StartVersion)
	assert.Equal(t, uint64(1), batches[0].ChainID)
	require.Len(t, batches[0].Transactions, 1)
	txn := batches[0].Transactions[0]
	require.Len(t, txn.Events, 1)
	assert.JSONEq(t, `{"price":"100"}`, string(txn.Events[0].Data))
	require.Len(t, txn.Changes, 1)
	assert.Equal(t, "0x1::listing::FixedPriceListing", txn.Changes[0].TypeStr)
}

func TestLoadFixture_MissingFileErrors(t *testing.T) {
	_, err := LoadFixture("/nonexistent/fixture.json")
	assert.Error(t, err)
}
