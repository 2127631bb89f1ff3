package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRefreshMillis = 250
	DefaultLogLevel      = "info"
)

// Config holds the run settings for the simulator CLI.
type Config struct {
	Jobs          int    `yaml:"jobs"`           // worker threads, 0 = all CPUs
	Trials        uint64 `yaml:"trials"`         // trial ceiling, 0 = unbounded
	Seed          uint64 `yaml:"seed"`           // base seed, 0 = random
	Core          string `yaml:"core"`           // emulator core name, "" = sole registered
	Quiet         bool   `yaml:"quiet"`          // suppress live output
	RefreshMillis int    `yaml:"refresh_millis"` // live view refresh interval
	LogLevel      string `yaml:"log_level"`
	MetricsAddr   string `yaml:"metrics_addr"` // prometheus listen address, "" = disabled
}

func DefaultConfig() *Config {
	return &Config{
		RefreshMillis: DefaultRefreshMillis,
		LogLevel:      DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be non-negative, got %d", c.Jobs)
	}
	if c.RefreshMillis <= 0 {
		return fmt.Errorf("refresh_millis must be positive, got %d", c.RefreshMillis)
	}
	return nil
}

// Refresh returns the live view refresh interval.
func (c *Config) Refresh() time.Duration {
	return time.Duration(c.RefreshMillis) * time.Millisecond
}
