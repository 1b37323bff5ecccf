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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithNoConfigFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(LoaderOptions{ConfigDir: filepath.Join(dir, "missing"), Environment: "test", EnvFile: ""})
	require.NoError(t, err)
	require.Equal(t, "test", cfg.Environment)
	require.Equal(t, ":5050", cfg.Core.ListenAddr)
}

func TestLoadPrefersEnvironmentNamedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("environment: default\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), []byte("environment: staging\n"), 0o644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging", EnvFile: ""})
	require.NoError(t, err)
	require.Equal(t, "staging", cfg.Environment)
}

func TestLoadFallsBackToDefaultYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("environment: default\n"), 0o644))

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "staging", EnvFile: ""})
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Environment)
}

func TestEnvironmentOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("core:\n  listen_addr: \":5050\"\n"), 0o644))
	t.Setenv("NIHILITY_CORE_LISTEN_ADDR", ":9999")

	cfg, err := Load(LoaderOptions{ConfigDir: dir, Environment: "whatever", EnvFile: ""})
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Core.ListenAddr)
}

func TestRegistryDSNOverrideEnablesRegistry(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NIHILITY_REGISTRY_DSN", "postgres://localhost/db")

	cfg, err := Load(LoaderOptions{ConfigDir: filepath.Join(dir, "missing"), Environment: "test", EnvFile: ""})
	require.NoError(t, err)
	require.True(t, cfg.Registry.Enabled)
	require.Equal(t, "postgres://localhost/db", cfg.Registry.DSN)
}

func TestMustLoadPanicsNever(t *testing.T) {
	require.NotPanics(t, func() {
		MustLoad(LoaderOptions{ConfigDir: t.TempDir(), Environment: "test", EnvFile: ""})
	})
}
