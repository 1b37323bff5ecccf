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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration shared by the core server and
// submodule clients. Only one of Core/Submodule is meaningful for a
// given process, but both load from the same file so a single binary
// could in principle run either role.
type Config struct {
	Environment string           `yaml:"environment" json:"environment"`
	Core        *CoreConfig      `yaml:"core" json:"core"`
	Submodule   *SubmoduleConfig `yaml:"submodule" json:"submodule"`
	KeyStore    *KeyStoreConfig  `yaml:"keystore" json:"keystore"`
	Registry    *RegistryConfig  `yaml:"registry" json:"registry"`
	Logging     *LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig   `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig    `yaml:"health" json:"health"`
}

// CoreConfig configures the single-port core server (§6: default 5050).
type CoreConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// SubmoduleConfig configures a submodule client process.
type SubmoduleConfig struct {
	Name              string        `yaml:"name" json:"name"`
	CoreAddr          string        `yaml:"core_addr" json:"core_addr"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" json:"heartbeat_interval"`
}

// KeyStoreConfig configures where the process's own RSA key material
// lives (§6: PKCS#8/SPKI PEM). KeySizeBits is not read by the auth
// package, which always generates auth.KeyBits (2048-bit) keys.
type KeyStoreConfig struct {
	KeySizeBits int    `yaml:"key_size_bits" json:"key_size_bits"`
	Directory   string `yaml:"directory" json:"directory"`
}

// RegistryConfig controls the optional Postgres-backed audit trail of
// submodule lifecycle events. Disabled by default: the fabric itself
// is purely in-memory and does not require a database.
type RegistryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	DSN     string `yaml:"dsn" json:"dsn"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig represents Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig represents liveness/readiness endpoint configuration.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Core == nil {
		cfg.Core = &CoreConfig{}
	}
	if cfg.Core.ListenAddr == "" {
		cfg.Core.ListenAddr = ":5050"
	}
	if cfg.Submodule != nil && cfg.Submodule.HeartbeatInterval == 0 {
		cfg.Submodule.HeartbeatInterval = 30 * time.Second
	}
	if cfg.KeyStore == nil {
		cfg.KeyStore = &KeyStoreConfig{}
	}
	if cfg.KeyStore.KeySizeBits == 0 {
		cfg.KeyStore.KeySizeBits = 2048
	}
	if cfg.KeyStore.Directory == "" {
		cfg.KeyStore.Directory = ".nihility/keys"
	}
	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Health == nil {
		cfg.Health = &HealthConfig{}
	}
	if cfg.Health.Addr == "" {
		cfg.Health.Addr = ":8080"
	}
	if cfg.Health.Path == "" {
		cfg.Health.Path = "/healthz"
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, trying
// YAML first and falling back to JSON on parse failure.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("config: parse %s (tried YAML and JSON): %w", path, err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// GetEnvironment returns the current environment from NIHILITY_ENV, or
// "development" if unset.
func GetEnvironment() string {
	env := os.Getenv("NIHILITY_ENV")
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}
