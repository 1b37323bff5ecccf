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

package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCoreGeneratesAndPersistsKeys(t *testing.T) {
	dir := t.TempDir()
	s := New()
	require.NoError(t, s.InitCore(dir))
	require.NotNil(t, s.PrivateKey())

	require.FileExists(t, filepath.Join(dir, "id_rsa"))
	require.FileExists(t, filepath.Join(dir, "id_rsa.pub"))
}

func TestInitCoreReloadsExistingKeys(t *testing.T) {
	dir := t.TempDir()
	first := New()
	require.NoError(t, first.InitCore(dir))
	firstKey := first.PrivateKey()

	second := New()
	require.NoError(t, second.InitCore(dir))
	require.Equal(t, firstKey.D, second.PrivateKey().D)
}

func TestInitCoreIsANoOpOnSecondCall(t *testing.T) {
	dir := t.TempDir()
	s := New()
	require.NoError(t, s.InitCore(dir))
	firstKey := s.PrivateKey()

	require.NoError(t, s.InitCore(dir))
	require.Same(t, firstKey, s.PrivateKey())
}

func TestInitSubmoduleSetsNameAndKeysCoreUnderItsOwnName(t *testing.T) {
	coreDir := t.TempDir()
	core := New()
	require.NoError(t, core.InitCore(coreDir))
	corePubPath := filepath.Join(coreDir, "id_rsa.pub")

	sub := New()
	require.NoError(t, sub.InitSubmodule("my-submodule", corePubPath))

	require.Equal(t, "my-submodule", sub.Name())
	require.NotNil(t, sub.PrivateKey())

	key, err := sub.Get("my-submodule")
	require.NoError(t, err)
	require.Equal(t, core.PublicKey(), key)
}

func TestSetNameOnlyTakesFirstCall(t *testing.T) {
	s := New()
	s.SetName("first")
	s.SetName("second")
	require.Equal(t, "first", s.Name())
}

func TestSetAuthIDOnlyTakesFirstCall(t *testing.T) {
	s := New()
	s.SetAuthID("id-1")
	s.SetAuthID("id-2")
	require.Equal(t, "id-1", s.AuthID())
}

func TestGetUnknownAuthIDReturnsErrAuthID(t *testing.T) {
	s := New()
	_, err := s.Get("nonexistent")
	require.ErrorIs(t, err, ErrAuthID)
}

func TestInsertThenRemove(t *testing.T) {
	s := New()
	key, err := GenerateKeyPair()
	require.NoError(t, err)

	s.Insert("auth-id", &key.PublicKey)
	got, err := s.Get("auth-id")
	require.NoError(t, err)
	require.Equal(t, &key.PublicKey, got)

	s.Remove("auth-id")
	_, err = s.Get("auth-id")
	require.ErrorIs(t, err, ErrAuthID)
}

func TestInsertSameKeyTwiceIsHarmless(t *testing.T) {
	s := New()
	key, err := GenerateKeyPair()
	require.NoError(t, err)

	s.Insert("auth-id", &key.PublicKey)
	s.Insert("auth-id", &key.PublicKey)
	got, err := s.Get("auth-id")
	require.NoError(t, err)
	require.Equal(t, &key.PublicKey, got)
}
