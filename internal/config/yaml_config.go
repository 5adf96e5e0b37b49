package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Query lists are easier to manage in YAML than in a comma-separated env var.
type YAMLConfig struct {
	Queries   []string        `yaml:"queries"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// SchedulerConfig controls the periodic scrape job.
type SchedulerConfig struct {
	Enabled         *bool `yaml:"enabled,omitempty"`
	IntervalMinutes int   `yaml:"interval_minutes"`
}

// DiscoveryConfig tunes the recommendation fan-out.
type DiscoveryConfig struct {
	FanOutLimit int `yaml:"fanout_limit"`
	Concurrency int `yaml:"concurrency"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	return ParseYAMLConfig(data)
}

// ParseYAMLConfig decodes YAML bytes and drops blank query entries.
func ParseYAMLConfig(data []byte) (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	queries := cfg.Queries[:0]
	for _, q := range cfg.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	cfg.Queries = queries

	return &cfg, nil
}
