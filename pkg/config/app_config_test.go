package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appYAML = `
transaction_stream_config:
  endpoint: https://grpc.aptoslabs.com
  initial_starting_version: 1000
db_config:
  type: postgres_config
  connection_string: postgres://localhost/nftindexer
processor_mode: default
processor_id: nft-indexer
nft_marketplace_configs:
  - wapal.yaml
server:
  metrics_addr: ":9100"
`

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(appYAML), 0o644))

	t.Setenv("NFTIDX_TRANSACTION_STREAM_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPoolSize, cfg.DB.DBPoolSize)
	assert.Equal(t, ModeDefault, cfg.ProcessorMode)
	assert.Equal(t, "env-key", cfg.TransactionStream.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsMissingMarketplaceConfigs(t *testing.T) {
	cfg := &AppConfig{
		TransactionStream: TransactionStreamConfig{Endpoint: "x"},
		DB:                DBConfig{ConnectionString: "y"},
		ProcessorMode:     ModeDefault,
	}
	assert.Error(t, cfg.Validate())
}

func TestValidate_BackfillRequiresID(t *testing.T) {
	cfg := &AppConfig{
		TransactionStream:      TransactionStreamConfig{Endpoint: "x"},
		DB:                     DBConfig{ConnectionString: "y"},
		ProcessorMode:          ModeBackfill,
		MarketplaceConfigPaths: []string{"wapal.yaml"},
	}
	assert.Error(t, cfg.Validate())
}
