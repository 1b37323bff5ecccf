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

import "github.com/nihility-go/nihility/wire"

// OperateType mirrors wire.OperateType.
type OperateType string

const (
	OperateUndefined OperateType = "Undefined"
	OperateRegister  OperateType = "Register"
	OperateOffline   OperateType = "Offline"
	OperateHeartbeat OperateType = "Heartbeat"
	OperateUpdate    OperateType = "Update"
)

// ModuleOperate represents a submodule lifecycle event: registration,
// offline, heartbeat, or update. Info is present for every operation
// except Heartbeat, which only needs the submodule's name.
type ModuleOperate struct {
	Name        string
	Info        *wire.SubmoduleInfo
	OperateType OperateType
	Sign        []byte
}

func (e *ModuleOperate) GetSign() []byte  { return e.Sign }
func (e *ModuleOperate) SetSign(s []byte) { e.Sign = s }

// NewModuleOperate builds a lifecycle entity carrying full submodule
// info, for Register/Offline/Update.
func NewModuleOperate(name string, info wire.SubmoduleInfo, opType OperateType) *ModuleOperate {
	return &ModuleOperate{Name: name, Info: &info, OperateType: opType}
}

// NewHeartbeatOperate builds the lightweight Heartbeat-only entity.
func NewHeartbeatOperate(name string) *ModuleOperate {
	return &ModuleOperate{Name: name, OperateType: OperateHeartbeat}
}

// ToSubmoduleReq converts to wire.SubmoduleReq. Fails
// ErrCreateSubmoduleReq if Info is absent.
func (e *ModuleOperate) ToSubmoduleReq() (*wire.SubmoduleReq, error) {
	if e.Info == nil {
		return nil, recordConversionError("submodule", ErrCreateSubmoduleReq)
	}
	defer recordConversionSuccess("submodule")
	connParams := e.Info.ConnParams
	return &wire.SubmoduleReq{
		Name:             e.Name,
		DefaultInstruct:  e.Info.DefaultInstruct,
		ConnectionParams: &connParams,
		Sign:             e.Sign,
	}, nil
}

// ToSubmoduleHeartbeat converts to wire.SubmoduleHeartbeat. Fails
// ErrCreateSubmoduleHeartbeat unless OperateType is Heartbeat.
func (e *ModuleOperate) ToSubmoduleHeartbeat() (*wire.SubmoduleHeartbeat, error) {
	if e.OperateType != OperateHeartbeat {
		return nil, recordConversionError("submodule", ErrCreateSubmoduleHeartbeat)
	}
	defer recordConversionSuccess("submodule")
	return &wire.SubmoduleHeartbeat{Name: e.Name, Sign: e.Sign}, nil
}

// ModuleOperateFromSubmoduleReq converts a wire.SubmoduleReq into a
// ModuleOperate, with opType supplied by the caller (the server
// overrides operate_type per the RPC method invoked, not what the
// message claims). Fails ErrCreateSubmoduleReq if ConnectionParams is
// absent.
func ModuleOperateFromSubmoduleReq(w *wire.SubmoduleReq, opType OperateType) (*ModuleOperate, error) {
	if w.ConnectionParams == nil {
		return nil, recordConversionError("submodule", ErrCreateSubmoduleReq)
	}
	defer recordConversionSuccess("submodule")
	return &ModuleOperate{
		Name: w.Name,
		Info: &wire.SubmoduleInfo{
			DefaultInstruct: w.DefaultInstruct,
			ConnParams:      *w.ConnectionParams,
		},
		OperateType: opType,
		Sign:        w.Sign,
	}, nil
}

// ModuleOperateFromHeartbeat converts a wire.SubmoduleHeartbeat into a
// ModuleOperate. Infallible.
func ModuleOperateFromHeartbeat(w *wire.SubmoduleHeartbeat) *ModuleOperate {
	defer recordConversionSuccess("submodule")
	return &ModuleOperate{Name: w.Name, OperateType: OperateHeartbeat, Sign: w.Sign}
}
