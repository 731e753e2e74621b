// Package config loads the market node's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/fantamercato/market/markettypes"
)

type Config struct {
	ListenAddress string        `yaml:"listen_address"`
	LogLevel      string        `yaml:"log_level"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SweepWorkers  int           `yaml:"sweep_workers"`

	Rules markettypes.Rules `yaml:"rules"`
}

func Default() Config {
	// the rules maps are copied so unmarshalling never merges into the
	// shared defaults
	rules := markettypes.DefaultRules
	rules.ClauseMultipliers = map[int]int{}
	for duration, multiplier := range markettypes.DefaultRules.ClauseMultipliers {
		rules.ClauseMultipliers[duration] = multiplier
	}
	rules.RosterQuota = map[markettypes.Position]int{}
	for position, quota := range markettypes.DefaultRules.RosterQuota {
		rules.RosterQuota[position] = quota
	}

	return Config{
		ListenAddress: "0.0.0.0:8080",
		LogLevel:      "info",
		SweepInterval: time.Second,
		SweepWorkers:  5,
		Rules:         rules,
	}
}

// Load reads a YAML file over the defaults; a missing path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Rules.MinIncrement < 1 {
		return fmt.Errorf("min_increment must be at least 1")
	}
	if cfg.Rules.MaxDuration < 1 {
		return fmt.Errorf("max_duration must be at least 1")
	}
	for duration := 1; duration <= cfg.Rules.MaxDuration; duration++ {
		if cfg.Rules.ClauseMultipliers[duration] == 0 {
			return fmt.Errorf("missing clause multiplier for duration %d", duration)
		}
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	return nil
}
