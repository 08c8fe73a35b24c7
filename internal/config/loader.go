package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	GPUSpecsFile string `json:"gpu_specs_file" yaml:"gpu_specs_file" toml:"gpu_specs_file"`

	// Provider credentials and tuning.
	APIKey  string `json:"api_key" yaml:"api_key" toml:"api_key"`
	APIBase string `json:"api_base" yaml:"api_base" toml:"api_base"`
	Image   string `json:"image" yaml:"image" toml:"image"`

	// Monitor cadence, in seconds.
	PollIntervalSeconds       int `json:"poll_interval_seconds" yaml:"poll_interval_seconds" toml:"poll_interval_seconds"`
	PollTimeoutSeconds        int `json:"poll_timeout_seconds" yaml:"poll_timeout_seconds" toml:"poll_timeout_seconds"`
	CostUpdateIntervalSeconds int `json:"cost_update_interval_seconds" yaml:"cost_update_interval_seconds" toml:"cost_update_interval_seconds"`
	PollFailureThreshold      int `json:"poll_failure_threshold" yaml:"poll_failure_threshold" toml:"poll_failure_threshold"`
	SetupTimeoutSeconds       int `json:"setup_timeout_seconds" yaml:"setup_timeout_seconds" toml:"setup_timeout_seconds"`

	// SSE keepalive cadence, in seconds.
	KeepaliveSeconds int `json:"keepalive_seconds" yaml:"keepalive_seconds" toml:"keepalive_seconds"`

	// Comma-separated list of allowed CORS origins; "*" allows any.
	CORSOrigins string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
