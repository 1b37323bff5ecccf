// Copyright (C) 2025 nihility-go
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads process configuration for the core server and
// submodule clients: a YAML/JSON file overlaid with a .env file and
// finally process environment variables, highest priority last.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoaderOptions configures Load.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default: ./config).
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// EnvFile is the dotenv file to overlay, relative to the working
	// directory; empty disables it. Missing files are not an error.
	EnvFile string
}

// DefaultLoaderOptions returns the defaults Load uses when called with
// no options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigDir: "config",
		EnvFile:   ".env",
	}
}

// Load reads the environment-specific config file under ConfigDir,
// falling back to default.yaml then config.yaml, overlays a .env file,
// applies environment variable overrides, and fills in defaults.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.EnvFile != "" {
		_ = godotenv.Load(options.EnvFile) // missing .env is fine; process env still applies
	}

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	cfg, err := firstReadable(
		filepath.Join(options.ConfigDir, fmt.Sprintf("%s.yaml", env)),
		filepath.Join(options.ConfigDir, "default.yaml"),
		filepath.Join(options.ConfigDir, "config.yaml"),
	)
	if err != nil {
		cfg = &Config{Environment: env}
		setDefaults(cfg)
	}
	if cfg.Environment == "" {
		cfg.Environment = env
	}

	applyEnvironmentOverrides(cfg)
	return cfg, nil
}

func firstReadable(paths ...string) (*Config, error) {
	var lastErr error
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			lastErr = err
			continue
		}
		return LoadFromFile(p)
	}
	return nil, lastErr
}

// applyEnvironmentOverrides gives process environment variables the
// final say over file-provided values (§6 ambient config convention).
func applyEnvironmentOverrides(cfg *Config) {
	if v := os.Getenv("NIHILITY_CORE_LISTEN_ADDR"); v != "" {
		if cfg.Core == nil {
			cfg.Core = &CoreConfig{}
		}
		cfg.Core.ListenAddr = v
	}
	if v := os.Getenv("NIHILITY_SUBMODULE_NAME"); v != "" {
		if cfg.Submodule == nil {
			cfg.Submodule = &SubmoduleConfig{}
		}
		cfg.Submodule.Name = v
	}
	if v := os.Getenv("NIHILITY_CORE_ADDR"); v != "" {
		if cfg.Submodule == nil {
			cfg.Submodule = &SubmoduleConfig{}
		}
		cfg.Submodule.CoreAddr = v
	}
	if v := os.Getenv("NIHILITY_KEYSTORE_DIR"); v != "" && cfg.KeyStore != nil {
		cfg.KeyStore.Directory = v
	}
	if v := os.Getenv("NIHILITY_REGISTRY_DSN"); v != "" {
		if cfg.Registry == nil {
			cfg.Registry = &RegistryConfig{}
		}
		cfg.Registry.DSN = v
		cfg.Registry.Enabled = true
	}
	if v := os.Getenv("NIHILITY_LOG_LEVEL"); v != "" && cfg.Logging != nil {
		cfg.Logging.Level = v
	}
}

// MustLoad loads configuration or panics, for use in cmd main()s where
// a broken config is unrecoverable.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: load failed: %v", err))
	}
	return cfg
}
