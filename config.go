package networth

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the service: storage,
// settlement currency, conversion rates and the daily schedule.
type Config struct {
	DBPath     string             `yaml:"db_path"`
	Settlement string             `yaml:"settlement"`
	Rates      map[string]float64 `yaml:"rates,omitempty"`
	Schedule   ScheduleConfig     `yaml:"schedule"`
}

// ScheduleConfig controls the daily incremental rebuild.
type ScheduleConfig struct {
	Interval string `yaml:"interval"` // e.g. "24h", "1h"
}

// ParseInterval converts the schedule interval to a time.Duration.
func (s ScheduleConfig) ParseInterval() (time.Duration, error) {
	if s.Interval == "" {
		return 24 * time.Hour, nil
	}
	return time.ParseDuration(s.Interval)
}

// DefaultConfig returns a configuration that works out of the box.
func DefaultConfig() *Config {
	return &Config{
		DBPath:     "networth.db",
		Settlement: "USD",
		Schedule:   ScheduleConfig{Interval: "24h"},
	}
}

// LoadConfig loads a YAML configuration from a file. A missing path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Settlement == "" {
		return fmt.Errorf("settlement currency is required")
	}
	if len(c.Settlement) != 3 {
		return fmt.Errorf("settlement must be a 3-letter ISO code, got %q", c.Settlement)
	}
	for cur, rate := range c.Rates {
		if len(cur) != 3 {
			return fmt.Errorf("rates: %q is not a 3-letter ISO code", cur)
		}
		if rate <= 0 {
			return fmt.Errorf("rates: %s must be positive, got %v", cur, rate)
		}
	}
	if _, err := c.Schedule.ParseInterval(); err != nil {
		return fmt.Errorf("schedule.interval: %w", err)
	}
	return nil
}

// RateTable merges the configured overrides on top of the defaults. The
// settlement currency always has an entry: a settlement outside the
// table would fail every conversion.
func (c *Config) RateTable() (RateTable, error) {
	rates := make(RateTable, len(DefaultRates)+len(c.Rates))
	for cur, rate := range DefaultRates {
		rates[cur] = rate
	}
	for cur, rate := range c.Rates {
		rates[cur] = rate
	}
	if _, ok := rates[c.Settlement]; !ok {
		return nil, fmt.Errorf("no conversion rate for settlement currency %s", c.Settlement)
	}
	return rates, nil
}
