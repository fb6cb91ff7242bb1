package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the book's environmental tunables: the GOODFORDAY pruning
// cutoff hour and the time zone it is interpreted in.
type Config struct {
	// CutoffHour is the local hour (0-23) at which resting GOODFORDAY
	// orders are cancelled. Defaults to 16.
	CutoffHour int `yaml:"cutoff_hour"`
	// Location is the time zone the cutoff hour is interpreted in.
	// Defaults to time.Local. Not serialized: set it programmatically.
	Location *time.Location `yaml:"-"`
}

// DefaultConfig returns the spec's default: 16:00 local time.
func DefaultConfig() Config {
	return Config{CutoffHour: 16, Location: time.Local}
}

// LoadConfig reads a small YAML document of the form:
//
//	cutoff_hour: 16
//
// merging it over DefaultConfig, in the teacher pack's config-loading
// idiom (see chycee-CryptoGo/internal/infra/config.go).
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.CutoffHour < 0 || cfg.CutoffHour > 23 {
		return Config{}, fmt.Errorf("cutoff_hour %d out of range [0,23]", cfg.CutoffHour)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return cfg, nil
}
