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

// ResponseCode is the outcome of a single RPC call.
type ResponseCode string

const (
	ResponseSuccess          ResponseCode = "Success"
	ResponseUnknownError     ResponseCode = "UnknownError"
	ResponseUnableToProcess  ResponseCode = "UnableToProcess"
	ResponseAuthenticationFail ResponseCode = "AuthenticationFail"
)

var codeToWire = map[ResponseCode]wire.ResponseCode{
	ResponseSuccess:            wire.ResponseSuccess,
	ResponseUnknownError:       wire.ResponseUnknownError,
	ResponseUnableToProcess:    wire.ResponseUnableToProcess,
	ResponseAuthenticationFail: wire.ResponseAuthenticationFail,
}

var codeFromWire = map[wire.ResponseCode]ResponseCode{
	wire.ResponseSuccess:            ResponseSuccess,
	wire.ResponseUnknownError:       ResponseUnknownError,
	wire.ResponseUnableToProcess:    ResponseUnableToProcess,
	wire.ResponseAuthenticationFail: ResponseAuthenticationFail,
}

// ResponseEntity carries the outcome of an RPC call back to the caller.
// Code defaults to Success; the four mutators are terminal writes, and
// verification failure on the client overwrites Code with
// AuthenticationFail regardless of what the wire message said.
type ResponseEntity struct {
	Code ResponseCode
	Sign []byte
}

func (e *ResponseEntity) GetSign() []byte  { return e.Sign }
func (e *ResponseEntity) SetSign(s []byte) { e.Sign = s }

// NewResponseEntity builds a response defaulted to Success.
func NewResponseEntity() *ResponseEntity {
	return &ResponseEntity{Code: ResponseSuccess}
}

func (e *ResponseEntity) SetSuccess() *ResponseEntity {
	e.Code = ResponseSuccess
	return e
}

func (e *ResponseEntity) SetUnknownError() *ResponseEntity {
	e.Code = ResponseUnknownError
	return e
}

func (e *ResponseEntity) SetUnableToProcess() *ResponseEntity {
	e.Code = ResponseUnableToProcess
	return e
}

func (e *ResponseEntity) SetAuthenticationFail() *ResponseEntity {
	e.Code = ResponseAuthenticationFail
	return e
}

// ToWire converts to wire.Resp.
func (e *ResponseEntity) ToWire() *wire.Resp {
	return &wire.Resp{Code: codeToWire[e.Code], Sign: e.Sign}
}

// ResponseEntityFromWire converts a wire.Resp back to a ResponseEntity.
// Unrecognised wire codes map to UnknownError rather than a zero value.
func ResponseEntityFromWire(w *wire.Resp) *ResponseEntity {
	code, ok := codeFromWire[w.Code]
	if !ok {
		code = ResponseUnknownError
	}
	return &ResponseEntity{Code: code, Sign: w.Sign}
}
