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

package entity

import "errors"

// Conversion error kinds. Each one corresponds to a named illegal
// conversion between an internal entity shape and a wire message.
var (
	// ErrCreateManipulateReq is returned converting a ManipulateEntity to
	// a wire message whose payload shape does not match the entity's.
	ErrCreateManipulateReq = errors.New("entity: create manipulate request: payload shape mismatch")

	// ErrCreateSubmoduleReq is returned converting a ModuleOperate to a
	// SubmoduleReq when Info is absent, or the inverse when
	// ConnectionParams is absent.
	ErrCreateSubmoduleReq = errors.New("entity: create submodule request: required field absent")

	// ErrCreateSubmoduleHeartbeat is returned converting a ModuleOperate
	// to a SubmoduleHeartbeat when OperateType is not Heartbeat.
	ErrCreateSubmoduleHeartbeat = errors.New("entity: create submodule heartbeat: operate_type is not Heartbeat")

	// ErrCreateManipulateEntity is returned converting a
	// DirectConnectionManipulate to a ManipulateEntity when
	// ConnectionParams is absent.
	ErrCreateManipulateEntity = errors.New("entity: create manipulate entity: connection_params absent")
)
