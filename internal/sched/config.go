package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is wrapped by every configuration error returned from Run.
var ErrInvalidConfig = errors.New("invalid run configuration")

// Config mirrors config.yml
type Config struct {
	MaxConcurrent int    `yaml:"max_concurrent"` // cap on tasks running within one batch
	MaxMemoryMB   int    `yaml:"max_memory_mb"`  // cap on summed MemoryMB of one batch
	Seed          string `yaml:"seed"`           // opaque key driving the tie-break order
}

// DefaultConfig returns the values used when no config file is present.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 4,
		MaxMemoryMB:   1024,
		Seed:          "",
	}
}

// Load reads YAML and overrides defaults; empty or unreadable path = defaults
// only. Keys absent from the file keep their default value. Load never fixes
// an explicitly bad value; that is Validate's job, so a broken file still
// surfaces as a configuration error instead of being silently patched.
func Load(path string) Config {
	cfg := DefaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)
	return cfg
}

// Validate rejects configurations the scheduler cannot honor. The run is
// refused before any task is touched.
func (c Config) Validate() error {
	if c.MaxConcurrent < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max_concurrent must be >= 1, got %d", c.MaxConcurrent)
	}
	if c.MaxMemoryMB < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max_memory_mb must be >= 0, got %d", c.MaxMemoryMB)
	}
	return nil
}
