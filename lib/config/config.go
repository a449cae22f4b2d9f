// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Deltamap.
//
// Configuration is loaded from a single YAML file specified by:
//   - DELTAMAP_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery: with neither set,
// built-in defaults apply. This keeps configuration deterministic and
// auditable with no hidden overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "DELTAMAP_CONFIG"

// Config is the Deltamap configuration.
type Config struct {
	// CacheDir is the verification-result cache directory. Empty
	// disables the cache unless a command enables it explicitly.
	CacheDir string `yaml:"cache_dir"`

	// BlockSize is the block length in bytes used when generating
	// blockmaps. Zero means the built-in default.
	BlockSize int64 `yaml:"block_size"`

	// Warnings enables non-fatal warnings (unexpected blockmap
	// version, extra file entries). On by default; set false to
	// suppress them.
	Warnings bool `yaml:"warnings"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BlockSize: 64 * 1024,
		Warnings:  true,
	}
}

// Load reads configuration from the given path. An empty path falls
// back to DELTAMAP_CONFIG; with neither set, the defaults are
// returned. A path that is set but unreadable or invalid is an error
// — a requested config never silently degrades to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	configuration := Default()
	if path == "" {
		return configuration, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if configuration.BlockSize == 0 {
		configuration.BlockSize = Default().BlockSize
	}
	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return configuration, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.BlockSize < 0 {
		return fmt.Errorf("block_size %d is negative", c.BlockSize)
	}
	return nil
}
