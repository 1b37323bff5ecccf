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

// Package registry is an optional, Postgres-backed audit trail of
// submodule lifecycle events (register/offline/update/heartbeat). The
// RPC fabric itself never depends on this package: handlers forward
// verified entities to the in-process queue regardless of whether a
// Store is configured, and a nil *Store simply skips logging.
package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store records submodule lifecycle events to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool against dsn and verifies it with a
// ping before returning.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("registry: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the submodule_events table if it does not
// already exist. Callers invoke this once at startup rather than
// shipping a separate migration tool.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS submodule_events (
			id          BIGSERIAL PRIMARY KEY,
			auth_id     TEXT NOT NULL,
			name        TEXT NOT NULL,
			event       TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("registry: ensure schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordEvent appends a single lifecycle event. authID identifies the
// submodule (empty at register time, before an id has been issued);
// name is the submodule's own declared name.
func (s *Store) RecordEvent(ctx context.Context, authID, name, event string) error {
	const query = `
		INSERT INTO submodule_events (auth_id, name, event, occurred_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := s.pool.Exec(ctx, query, authID, name, event)
	if err != nil {
		return fmt.Errorf("registry: record %s event for %s: %w", event, name, err)
	}
	return nil
}

// LastHeartbeatAge reports how long ago the most recent heartbeat
// event (from any submodule) was recorded. It returns -1 with a nil
// error if no heartbeat has ever been recorded, matching the contract
// expected by health.SubmoduleLivenessCheck.
func (s *Store) LastHeartbeatAge(ctx context.Context) (age float64, err error) {
	const query = `
		SELECT EXTRACT(EPOCH FROM (NOW() - MAX(occurred_at)))
		FROM submodule_events
		WHERE event = 'heartbeat'
	`
	var seconds *float64
	if err := s.pool.QueryRow(ctx, query).Scan(&seconds); err != nil {
		return 0, fmt.Errorf("registry: last heartbeat age: %w", err)
	}
	if seconds == nil {
		return -1, nil
	}
	return *seconds, nil
}
