package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures the toolkit discovery and linker settings for a project.
type Config struct {
	Version int           `yaml:"version"`
	Toolkit ToolkitConfig `yaml:"toolkit"`
	Linker  LinkerConfig  `yaml:"linker"`
}

// ToolkitConfig controls how the toolkit installation is discovered.
type ToolkitConfig struct {
	// EnvVar names the environment variable consulted first for the
	// toolkit root.
	EnvVar string `yaml:"env_var"`
	// Marker is the root-relative file whose presence validates a
	// candidate directory.
	Marker string `yaml:"marker"`
	// DefaultRoot replaces the OS-conventional fallback root.
	DefaultRoot string `yaml:"default_root"`
	// ExtraCandidates are directories tried after the environment
	// variable but before the PATH search.
	ExtraCandidates []string `yaml:"extra_candidates"`
}

// LinkerConfig controls the linker version gate.
type LinkerConfig struct {
	Minimum string `yaml:"minimum"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Toolkit: ToolkitConfig{
			EnvVar: "CUDA_PATH",
			Marker: "include/cuda.h",
		},
		Linker: LinkerConfig{
			Minimum: "2.25.1",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills fields an explicit config file left empty.
func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.Toolkit.EnvVar) == "" {
		c.Toolkit.EnvVar = def.Toolkit.EnvVar
	}
	if strings.TrimSpace(c.Toolkit.Marker) == "" {
		c.Toolkit.Marker = def.Toolkit.Marker
	}
	if strings.TrimSpace(c.Linker.Minimum) == "" {
		c.Linker.Minimum = def.Linker.Minimum
	}
}
