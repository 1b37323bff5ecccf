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

// Package auth implements the envelope protocol: canonical entity
// encoding, SHA-256 digesting, and RSA-PKCS1v15 sign/verify over the
// `sign` field carried by every entity.
package auth

import (
	"bytes"
	"encoding/json"
)

// minScratchBuffer is the minimum capacity reserved on the scratch buffer
// before encoding. encoding/json grows past this transparently; the floor
// only avoids repeated small reallocations for the common entity sizes
// this protocol moves.
const minScratchBuffer = 512

// Encode canonically serializes v using buf as scratch space. Field order
// for structs is the Go struct's declaration order and map keys are
// sorted lexicographically, both guaranteed by encoding/json — so two
// peers encoding the same logical value always produce the same bytes.
// buf may be nil, in which case Encode allocates its own.
//
// Encoding failures here (a value containing a channel, func, or cyclic
// structure) are programming errors: the entity types in this module are
// already encode-safe, so callers should propagate the error up as a
// defect rather than retry.
func Encode(buf *bytes.Buffer, v interface{}) ([]byte, error) {
	if buf == nil {
		buf = new(bytes.Buffer)
	} else {
		buf.Reset()
	}
	buf.Grow(minScratchBuffer)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
