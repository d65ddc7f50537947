package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives the stress run. Values can come from a yaml file and are
// overridden by flags.
type Config struct {
	Duration       time.Duration `yaml:"duration"`
	Entities       int           `yaml:"entities"`
	Workers        int           `yaml:"workers"`
	MaxInstances   int           `yaml:"max_instances"`
	GCPauseMetrics bool          `yaml:"gc_pause_metrics"`
}

func defaultConfig() Config {
	return Config{
		Duration:     10 * time.Second,
		Entities:     10000,
		Workers:      runtime.GOMAXPROCS(0),
		MaxInstances: 1 << 17,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Entities <= 0 {
		return cfg, fmt.Errorf("config: entities must be positive, got %d", cfg.Entities)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxInstances < cfg.Entities {
		return cfg, fmt.Errorf("config: max_instances %d below entity count %d", cfg.MaxInstances, cfg.Entities)
	}
	return cfg, nil
}
