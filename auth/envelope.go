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
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/nihility-go/nihility/internal/metrics"
)

// Signable is implemented by every wire-addressable entity. The sign
// field doubles as input (the claimant's auth_id, written before hashing)
// and output (the RSA-encrypted envelope, written after encryption).
type Signable interface {
	GetSign() []byte
	SetSign(sign []byte)
}

// Sign implements the envelope protocol's signing half:
//
//  1. entity.sign <- utf8(authID)
//  2. digest <- hex(sha256(canonical_encode(entity)))
//  3. plaintext <- utf8(authID + "|" + digest)
//  4. entity.sign <- rsa_pkcs1v15_encrypt(recipient, plaintext)
//
// recipient is the public key of the party that must be able to verify —
// for a client request that is the server's key; for a server response it
// is deliberately the sender's own key, so only the original caller can
// decrypt it.
func Sign(e Signable, authID string, recipient *rsa.PublicKey) error {
	start := time.Now()
	e.SetSign([]byte(authID))

	encoded, err := Encode(nil, e)
	if err != nil {
		return fmt.Errorf("auth: canonical encode: %w", err)
	}
	digest := sha256.Sum256(encoded)
	plaintext := authID + "|" + hex.EncodeToString(digest[:])

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, recipient, []byte(plaintext))
	if err != nil {
		metrics.EnvelopeOperations.WithLabelValues("sign", "failure").Inc()
		return fmt.Errorf("auth: encrypt: %w", err)
	}
	e.SetSign(ciphertext)

	metrics.EnvelopeOperations.WithLabelValues("sign", "success").Inc()
	metrics.EnvelopeOperationDuration.WithLabelValues("sign").Observe(time.Since(start).Seconds())
	return nil
}

// Verify implements the receiver-side half of the protocol against the
// process's own private key. On success e's sign field is left holding
// utf8(auth_id), not the ciphertext, so downstream code can read the
// authenticated claimant directly off the entity.
func Verify(e Signable, private *rsa.PrivateKey) bool {
	start := time.Now()
	ok := verify(e, private)

	metrics.EnvelopeOperations.WithLabelValues("verify", resultLabel(ok)).Inc()
	metrics.EnvelopeOperationDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return ok
}

func verify(e Signable, private *rsa.PrivateKey) bool {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, private, e.GetSign())
	if err != nil {
		return false
	}

	authID, digestHex, ok := strings.Cut(string(plaintext), "|")
	if !ok {
		return false
	}

	e.SetSign([]byte(authID))
	encoded, err := Encode(nil, e)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]) == digestHex
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
