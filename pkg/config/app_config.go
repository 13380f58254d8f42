package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDBPoolSize is used when db_config.db_pool_size is unset.
const DefaultDBPoolSize = 150

// ChannelCapacity is the bounded-queue capacity between every pair of
// pipeline stages.
const ChannelCapacity = 100

// ProcessorMode selects which of the three checkpoint/recovery strategies
// the indexer runs under.
type ProcessorMode string

const (
	ModeDefault  ProcessorMode = "default"
	ModeBackfill ProcessorMode = "backfill"
	ModeTesting  ProcessorMode = "testing"
)

// AppConfig is the top-level configuration document. It maps directly to
// the YAML file structure, with sensitive fields overridable via
// NFTIDX_*-prefixed environment variables.
type AppConfig struct {
	TransactionStream TransactionStreamConfig `mapstructure:"transaction_stream_config"`
	DB                DBConfig                `mapstructure:"db_config"`
	ProcessorMode     ProcessorMode           `mapstructure:"processor_mode"`
	ProcessorID       string                  `mapstructure:"processor_id"`
	Backfill          BackfillConfig          `mapstructure:"backfill_config"`
	Testing           TestingConfig           `mapstructure:"testing_config"`
	MarketplaceConfigPaths []string           `mapstructure:"nft_marketplace_configs"`
	Server            ServerConfig            `mapstructure:"server"`
	Logging           LoggingConfig           `mapstructure:"logging"`
}

// TransactionStreamConfig describes the upstream gRPC transaction stream.
type TransactionStreamConfig struct {
	Endpoint                string `mapstructure:"endpoint"`
	APIKey                  string `mapstructure:"api_key"`
	InitialStartingVersion  int64  `mapstructure:"initial_starting_version"`
	ExpectedChainID         int64  `mapstructure:"expected_chain_id"`
}

// DBConfig describes the relational store connection.
type DBConfig struct {
	Type             string `mapstructure:"type"`
	ConnectionString string `mapstructure:"connection_string"`
	DBPoolSize       int    `mapstructure:"db_pool_size"`
}

// BackfillConfig is only consulted when ProcessorMode == ModeBackfill.
type BackfillConfig struct {
	BackfillID             string `mapstructure:"backfill_id"`
	InitialStartingVersion int64  `mapstructure:"initial_starting_version"`
	EndingVersion          *int64 `mapstructure:"ending_version"`
	OverwriteCheckpoint    bool   `mapstructure:"overwrite_checkpoint"`
}

// TestingConfig is only consulted when ProcessorMode == ModeTesting.
type TestingConfig struct {
	OverrideStartingVersion int64  `mapstructure:"override_starting_version"`
	EndingVersion           *int64 `mapstructure:"ending_version"`
}

// ServerConfig addresses the metrics/health HTTP listener.
type ServerConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoggingConfig controls the ambient logger's verbosity.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads AppConfig from a YAML file at path, applying
// NFTIDX_*-prefixed environment variable overrides on top (e.g.
// NFTIDX_DB_CONFIG_CONNECTION_STRING overrides db_config.connection_string).
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("NFTIDX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	if conn := os.Getenv("NFTIDX_DB_CONNECTION_STRING"); conn != "" {
		cfg.DB.ConnectionString = conn
	}
	if key := os.Getenv("NFTIDX_TRANSACTION_STREAM_API_KEY"); key != "" {
		cfg.TransactionStream.APIKey = key
	}
	if cfg.DB.DBPoolSize <= 0 {
		cfg.DB.DBPoolSize = DefaultDBPoolSize
	}
	if cfg.ProcessorMode == "" {
		cfg.ProcessorMode = ModeDefault
	}

	return &cfg, nil
}

// Validate checks the fields required for the configured processor mode.
func (c *AppConfig) Validate() error {
	if c.TransactionStream.Endpoint == "" {
		return fmt.Errorf("config: transaction_stream_config.endpoint is required")
	}
	if c.DB.ConnectionString == "" {
		return fmt.Errorf("config: db_config.connection_string is required (set NFTIDX_DB_CONNECTION_STRING)")
	}
	switch c.ProcessorMode {
	case ModeDefault, ModeBackfill, ModeTesting:
	default:
		return fmt.Errorf("config: unknown processor_mode %q", c.ProcessorMode)
	}
	if c.ProcessorMode == ModeBackfill && c.Backfill.BackfillID == "" {
		return fmt.Errorf("config: backfill_config.backfill_id is required in backfill mode")
	}
	if len(c.MarketplaceConfigPaths) == 0 {
		return fmt.Errorf("config: nft_marketplace_configs must list at least one marketplace config file")
	}
	return nil
}
