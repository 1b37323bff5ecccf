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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nihility-go/nihility/wire"
)

func TestModuleOperateToSubmoduleReqRequiresInfo(t *testing.T) {
	op := NewHeartbeatOperate("submodule-a")
	_, err := op.ToSubmoduleReq()
	require.ErrorIs(t, err, ErrCreateSubmoduleReq)
}

func TestModuleOperateSubmoduleReqRoundTrip(t *testing.T) {
	info := wire.SubmoduleInfo{
		DefaultInstruct: []string{"a", "b"},
		ConnParams:      wire.ConnParams{ConnectionType: wire.ConnectionHTTP, ClientType: wire.ClientBoth},
	}
	op := NewModuleOperate("submodule-a", info, OperateRegister)
	op.Sign = []byte("auth-id")

	req, err := op.ToSubmoduleReq()
	require.NoError(t, err)
	require.Equal(t, "submodule-a", req.Name)
	require.Equal(t, info.ConnParams, *req.ConnectionParams)

	back, err := ModuleOperateFromSubmoduleReq(req, OperateOffline)
	require.NoError(t, err)
	require.Equal(t, "submodule-a", back.Name)
	require.Equal(t, OperateOffline, back.OperateType)
	require.Equal(t, info.ConnParams, back.Info.ConnParams)
}

func TestModuleOperateFromSubmoduleReqRequiresConnectionParams(t *testing.T) {
	req := &wire.SubmoduleReq{Name: "submodule-a", ConnectionParams: nil}
	_, err := ModuleOperateFromSubmoduleReq(req, OperateRegister)
	require.ErrorIs(t, err, ErrCreateSubmoduleReq)
}

func TestModuleOperateToSubmoduleHeartbeatRequiresHeartbeatType(t *testing.T) {
	info := wire.SubmoduleInfo{ConnParams: wire.ConnParams{}}
	op := NewModuleOperate("submodule-a", info, OperateUpdate)
	_, err := op.ToSubmoduleHeartbeat()
	require.ErrorIs(t, err, ErrCreateSubmoduleHeartbeat)
}

func TestModuleOperateHeartbeatRoundTrip(t *testing.T) {
	op := NewHeartbeatOperate("submodule-a")
	op.Sign = []byte("auth-id")

	w, err := op.ToSubmoduleHeartbeat()
	require.NoError(t, err)
	require.Equal(t, "submodule-a", w.Name)

	back := ModuleOperateFromHeartbeat(w)
	require.Equal(t, "submodule-a", back.Name)
	require.Equal(t, OperateHeartbeat, back.OperateType)
	require.Equal(t, op.Sign, back.Sign)
}
