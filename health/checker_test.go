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

package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmoduleLivenessCheckHealthyWhenRecent(t *testing.T) {
	check := SubmoduleLivenessCheck(time.Minute, func() time.Duration { return 10 * time.Second })
	require.NoError(t, check(context.Background()))
}

func TestSubmoduleLivenessCheckUnhealthyWhenStale(t *testing.T) {
	check := SubmoduleLivenessCheck(time.Minute, func() time.Duration { return 5 * time.Minute })
	require.Error(t, check(context.Background()))
}

func TestSubmoduleLivenessCheckHealthyWhenNoneEverRegistered(t *testing.T) {
	check := SubmoduleLivenessCheck(time.Minute, func() time.Duration { return -1 })
	require.NoError(t, check(context.Background()))
}

func TestSubmoduleLivenessCheckRequiresFunction(t *testing.T) {
	check := SubmoduleLivenessCheck(time.Minute, nil)
	require.Error(t, check(context.Background()))
}

func TestHealthCheckerAggregatesOverallStatus(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	checker.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("bad", func(ctx context.Context) error { return errors.New("boom") })

	status := checker.GetOverallStatus(context.Background())
	require.Equal(t, StatusUnhealthy, status)
}

func TestHealthCheckerHealthyWithNoChecksRegistered(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	require.Equal(t, StatusHealthy, checker.GetOverallStatus(context.Background()))
}

func TestHealthCheckerUnregisterRemovesCheck(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	checker.RegisterCheck("bad", func(ctx context.Context) error { return errors.New("boom") })
	checker.UnregisterCheck("bad")

	require.Equal(t, StatusHealthy, checker.GetOverallStatus(context.Background()))
}

func TestKeyStoreHealthCheckRequiresFunction(t *testing.T) {
	check := KeyStoreHealthCheck(nil)
	require.Error(t, check(context.Background()))
}

func TestKeyStoreHealthCheckDelegatesToChecker(t *testing.T) {
	check := KeyStoreHealthCheck(func() error { return errors.New("no key loaded") })
	require.Error(t, check(context.Background()))

	check = KeyStoreHealthCheck(func() error { return nil })
	require.NoError(t, check(context.Background()))
}

func TestDatabaseHealthCheckRequiresPingFunction(t *testing.T) {
	check := DatabaseHealthCheck(nil)
	require.Error(t, check(context.Background()))
}

func TestDatabaseHealthCheckDelegatesToPing(t *testing.T) {
	check := DatabaseHealthCheck(func(ctx context.Context) error { return nil })
	require.NoError(t, check(context.Background()))
}
