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

	"github.com/nihility-go/nihility/auth"
)

func TestNewInstructEntityUsesStoreDefaultReceiver(t *testing.T) {
	store := auth.New()
	store.SetDefaultReceiver("default-submodule")

	e := NewInstructEntity("hello", "", store)
	require.Equal(t, "default-submodule", e.Info.ReceiveManipulateSubmodule)
	require.Equal(t, InstructDefault, e.Info.InstructType)
	require.NotEmpty(t, e.Info.InstructID)
}

func TestNewInstructEntityHonorsExplicitReceiver(t *testing.T) {
	store := auth.New()
	store.SetDefaultReceiver("default-submodule")

	e := NewInstructEntity("hello", "explicit-submodule", store)
	require.Equal(t, "explicit-submodule", e.Info.ReceiveManipulateSubmodule)
}

func TestInstructEntityWireRoundTrip(t *testing.T) {
	store := auth.New()
	store.SetAuthID("auth-id")
	e := NewInstructEntity("payload text", "target", store)

	w := e.ToWire()
	require.Equal(t, e.Info.InstructID, w.InstructID)
	require.Equal(t, "payload text", w.Text)

	back := InstructEntityFromWire(w)
	require.Equal(t, e.Info, back.Info)
	require.Equal(t, e.Data, back.Data)
	require.Equal(t, e.Sign, back.Sign)
}
