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

// Package rpc implements the client stub, server handlers, heartbeat
// supervisor and submodule lifecycle state machine that sit on top of
// the auth, entity and wire packages.
package rpc

import "errors"

// ConfigFieldMissingError is returned when a required key is absent from
// a conn_config map (server_addr, public_key, etc).
type ConfigFieldMissingError struct {
	Field string
}

func (e *ConfigFieldMissingError) Error() string {
	return "rpc: config field missing: " + e.Field
}

// NotConnectedError is returned when a send is attempted on a surface
// (submodule, instruct, manipulate) that has not been connected yet.
type NotConnectedError struct {
	Surface string
}

func (e *NotConnectedError) Error() string {
	return "rpc: not connected: " + e.Surface
}

// ThreadNotStartedError is returned when a stop is requested on a
// background task that was never started.
type ThreadNotStartedError struct {
	Name string
}

func (e *ThreadNotStartedError) Error() string {
	return "rpc: thread not started: " + e.Name
}

// ErrTransport wraps underlying transport-layer failures (HTTP status,
// dial failure, decode failure) that aren't specific to any one RPC
// method.
var ErrTransport = errors.New("rpc: transport error")
