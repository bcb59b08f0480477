package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docoutline/internal/outline"
)

// LoadClassifier reads classifier thresholds from a YAML file. Keys that are
// absent keep their defaults. An empty path returns the defaults.
//
//	size_tolerance: 0.75
//	exclude_patterns:
//	  - '^draft$'
func LoadClassifier(path string) (outline.Config, error) {
	if path == "" {
		return outline.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return outline.Config{}, fmt.Errorf("read classifier config: %w", err)
	}
	return ParseClassifier(data)
}

// ParseClassifier decodes YAML thresholds on top of the defaults.
func ParseClassifier(data []byte) (outline.Config, error) {
	cfg := outline.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return outline.Config{}, fmt.Errorf("parse classifier config: %w", err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return outline.Config{}, err
	}
	return cfg, nil
}
