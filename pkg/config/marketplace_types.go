package config

// DbColumn is one upsert target of a configured json_path mapping: a
// {table, column} pair taken verbatim from the marketplace YAML.
type DbColumn struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// EventRemapping is the per-event-type block under "events:" in a
// marketplace config: a map from JSONPath string to its upsert targets.
type EventRemapping struct {
	EventFields map[string][]DbColumn `yaml:"event_fields"`
}

// ResourceRemapping is the per-resource-type block under "resources:".
type ResourceRemapping struct {
	ResourceFields map[string][]DbColumn `yaml:"resource_fields"`
}

// MarketplaceConfig is the raw, as-decoded shape of a single marketplace's
// YAML document. One file exists per marketplace (wapal.yaml,
// tradeport_v2.yaml, ...).
type MarketplaceConfig struct {
	Name              string                       `yaml:"name"`
	EventModelMapping map[string]string            `yaml:"event_model_mapping"`
	Events            map[string]EventRemapping    `yaml:"events"`
	Resources         map[string]ResourceRemapping `yaml:"resources"`
}
