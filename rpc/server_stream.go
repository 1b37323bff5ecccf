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

package rpc

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/entity"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/internal/queue"
	"github.com/nihility-go/nihility/wire"
)

// serverStreamCapacity is the outbound response channel's buffer size
// on the server side of a streaming RPC (§5: 128).
const serverStreamCapacity = 128

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (h *Handlers) handleStreamInstruct(w http.ResponseWriter, r *http.Request) {
	const method = "send_multiple_text_instruct"
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := make(chan *wire.Resp, serverStreamCapacity)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for resp := range out {
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}()

	for {
		var req wire.TextInstruct
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		out <- verifyDispatchAndSign(h, &req, entity.InstructEntityFromWire, h.Instructs, method)
		metrics.StreamChannelDepth.WithLabelValues(method).Set(float64(len(out)))
	}

	close(out)
	<-writerDone
}

func (h *Handlers) handleStreamManipulate(w http.ResponseWriter, r *http.Request) {
	const method = "send_multiple_text_display_manipulate"
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := make(chan *wire.Resp, serverStreamCapacity)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for resp := range out {
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}()

	for {
		var req wire.TextDisplayManipulate
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		out <- verifyDispatchAndSign(h, &req, entity.ManipulateEntityFromTextDisplay, h.Manipulates, method)
		metrics.StreamChannelDepth.WithLabelValues(method).Set(float64(len(out)))
	}

	close(out)
	<-writerDone
}

// verifyDispatchAndSign is the per-message body of a streaming handler:
// verify the wire message exactly as the client canonical-encoded and
// signed it, only then convert to the internal entity, push onto the
// matching application queue, and sign a response. On verification
// failure it returns the benign authentication-error response without
// dispatching (§4.5); on a signing error it returns a synthetic
// UnknownError, matching the "one synthetic response then the stream
// keeps going" policy for per-message failures (distinct from a hard
// transport error, which instead ends the whole stream in §4.4/§7).
func verifyDispatchAndSign[W auth.Signable, T auth.Signable](h *Handlers, req W, convert func(W) T, q *queue.Unbounded[T], method string) *wire.Resp {
	if !auth.Verify(req, h.store.PrivateKey()) {
		metrics.RPCCallsCompleted.WithLabelValues(method, "authentication_fail").Inc()
		return &wire.Resp{Code: wire.ResponseUnknownError, Sign: []byte(authenticationErrorMessage)}
	}

	e := convert(req)
	authID := string(e.GetSign())
	q.Push(e)

	resp, err := h.signResponse(authID)
	if err != nil {
		metrics.RPCCallsCompleted.WithLabelValues(method, "failure").Inc()
		return &wire.Resp{Code: wire.ResponseUnknownError}
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	return resp
}
