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
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the process-wide key store: a mutex-guarded mapping of
// auth_id -> public key, the process's own private key, and the
// write-once identity slots (SUBMODULE_AUTH_ID, SUBMODULE_NAME,
// DEFAULT_RECEIVER_SUBMODULE) the protocol threads through entity
// construction. Each field that must be set exactly once uses its own
// sync.Once so a second call is a silent no-op rather than a panic or a
// clobbered value.
type Store struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey

	private *rsa.PrivateKey

	authIDOnce sync.Once
	authID     string

	nameOnce sync.Once
	name     string

	receiverOnce sync.Once
	receiver     string
}

// New creates an empty, uninitialised store.
func New() *Store {
	return &Store{keys: make(map[string]*rsa.PublicKey)}
}

// Default is the process-wide store consulted by entity constructors and
// the rpc client/server, which do not otherwise receive a Store through
// an explicit context parameter. See DESIGN.md's notes on
// auth/keystore.go for why this global exists.
var Default = New()

// InitCore is the core process's one-time startup: if both key files
// already exist under keyDir they are loaded, otherwise a fresh keypair
// is generated and persisted. A second call is a no-op.
func (s *Store) InitCore(keyDir string) error {
	privPath := filepath.Join(keyDir, "id_rsa")
	pubPath := filepath.Join(keyDir, "id_rsa.pub")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.private != nil {
		return nil
	}

	if fileExists(privPath) && fileExists(pubPath) {
		key, err := loadPrivatePEM(privPath)
		if err != nil {
			return err
		}
		s.private = key
		return nil
	}

	if err := os.MkdirAll(keyDir, 0o700); err != nil {
		return fmt.Errorf("auth: create key dir %s: %w", keyDir, err)
	}

	key, err := GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("auth: generate core keypair: %w", err)
	}
	if err := persistKeyPair(key, privPath, pubPath); err != nil {
		return err
	}
	s.private = key
	return nil
}

// InitSubmodule is the submodule process's one-time startup: it generates
// a fresh local keypair and reads the core's public key from
// corePublicKeyPath (the handshake artifact distributed out-of-band),
// pre-populating the key map under the submodule's own raw name so the
// first pre-registration signed send can locate a recipient key.
func (s *Store) InitSubmodule(submoduleName, corePublicKeyPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.private != nil {
		return nil
	}

	corePub, err := loadPublicPEM(corePublicKeyPath)
	if err != nil {
		return fmt.Errorf("auth: load core public key: %w", err)
	}

	key, err := GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("auth: generate submodule keypair: %w", err)
	}

	s.private = key
	s.keys[submoduleName] = corePub
	s.SetName(submoduleName)
	return nil
}

// PrivateKey returns the process's own RSA private key. Callers must not
// call this before Init{Core,Submodule} has run.
func (s *Store) PrivateKey() *rsa.PrivateKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.private
}

// PublicKey returns the process's own RSA public key.
func (s *Store) PublicKey() *rsa.PublicKey {
	priv := s.PrivateKey()
	if priv == nil {
		return nil
	}
	return &priv.PublicKey
}

// Get looks up the public key stored under auth_id.
func (s *Store) Get(authID string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[authID]
	if !ok {
		return nil, ErrAuthID
	}
	return key, nil
}

// Insert stores (or overwrites) the public key for auth_id. Inserting the
// same (auth_id, key) pair twice is harmless (P4).
func (s *Store) Insert(authID string, key *rsa.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[authID] = key
}

// Remove deletes the entry for auth_id, if present. Used by the offline
// flow; see DESIGN.md's decision on Open Question O1 for why offline
// removes the key.
func (s *Store) Remove(authID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, authID)
}

// SetAuthID installs the core-issued auth_id. Only the first call takes
// effect (I4): once set, SUBMODULE_AUTH_ID never changes for the
// process's lifetime, even across a second registration (P4/scenario 6).
func (s *Store) SetAuthID(id string) {
	s.authIDOnce.Do(func() { s.authID = id })
}

// AuthID returns the core-issued auth_id, or "" if registration has not
// completed yet.
func (s *Store) AuthID() string {
	return s.authID
}

// SetName installs the submodule's own configured name, once.
func (s *Store) SetName(name string) {
	s.nameOnce.Do(func() { s.name = name })
}

// Name returns the submodule's configured name.
func (s *Store) Name() string { return s.name }

// SetDefaultReceiver installs the default instruct-receiver submodule
// name, once.
func (s *Store) SetDefaultReceiver(name string) {
	s.receiverOnce.Do(func() { s.receiver = name })
}

// DefaultReceiver returns the default instruct-receiver submodule name.
func (s *Store) DefaultReceiver() string { return s.receiver }

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadPrivatePEM(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read private key %s: %w", path, err)
	}
	return DecodePrivatePEM(data)
}

func loadPublicPEM(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read public key %s: %w", path, err)
	}
	return DecodePublicPEM(data)
}

func persistKeyPair(key *rsa.PrivateKey, privPath, pubPath string) error {
	privPEM, err := EncodePrivatePEM(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return fmt.Errorf("auth: write private key: %w", err)
	}

	pubPEM, err := EncodePublicPEM(&key.PublicKey)
	if err != nil {
		return err
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return fmt.Errorf("auth: write public key: %w", err)
	}
	return nil
}
