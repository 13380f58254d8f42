package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMarketplaceConfig reads and strictly decodes a single marketplace
// YAML document. Unknown top-level (or nested) fields are rejected:
// yaml.v3's decoder KnownFields(true) enforces this without a hand-rolled
// field walk.
func LoadMarketplaceConfig(path string) (*MarketplaceConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg MarketplaceConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("config: %s: marketplace name is required", path)
	}
	return &cfg, nil
}

// LoadMarketplaceConfigs loads and strictly decodes every marketplace
// config named in paths, preserving input order.
func LoadMarketplaceConfigs(paths []string) ([]*MarketplaceConfig, error) {
	configs := make([]*MarketplaceConfig, 0, len(paths))
	for _, p := range paths {
		cfg, err := LoadMarketplaceConfig(p)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
