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
	"context"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/entity"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/wire"
)

// SendMultipleTextInstruct opens the bidi instruct stream (§4.4, §6).
func (c *Client) SendMultipleTextInstruct(ctx context.Context, in <-chan *entity.InstructEntity) (<-chan *entity.ResponseEntity, error) {
	if err := c.requireConnected("instruct"); err != nil {
		return nil, err
	}
	return runStream(ctx, c, pathStreamInstruct, "send_multiple_text_instruct", in, func(e *entity.InstructEntity) (auth.Signable, error) {
		return e.ToWire(), nil
	})
}

// SendMultipleTextDisplayManipulate opens the bidi manipulate stream.
func (c *Client) SendMultipleTextDisplayManipulate(ctx context.Context, in <-chan *entity.ManipulateEntity) (<-chan *entity.ResponseEntity, error) {
	if err := c.requireConnected("manipulate"); err != nil {
		return nil, err
	}
	return runStream(ctx, c, pathStreamManip, "send_multiple_text_display_manipulate", in, func(e *entity.ManipulateEntity) (auth.Signable, error) {
		return e.ToTextDisplayManipulate()
	})
}

// runStream implements the shared forwarder/collector pattern (§4.4):
// the forwarder task signs each entity off in and writes it to the
// socket; the collector task reads wire.Resp frames back and verifies
// them onto the returned channel. Both run under one errgroup.Group so
// the forwarder closing the connection (input closed, or a write
// failure) reliably unblocks the collector's blocking read, and the
// output channel only closes once both tasks have actually exited.
func runStream[T auth.Signable](ctx context.Context, c *Client, path, method string, in <-chan T, toWire func(T) (auth.Signable, error)) (<-chan *entity.ResponseEntity, error) {
	conn, err := dialStream(ctx, c.transport.baseURL, path)
	if err != nil {
		return nil, err
	}

	out := make(chan *entity.ResponseEntity, clientStreamCapacity)

	var g errgroup.Group
	g.Go(func() error { return forwardStream(c, conn, in, toWire, method) })
	g.Go(func() error { return collectStream(c, conn, out) })

	go func() {
		_ = g.Wait()
		close(out)
	}()

	return out, nil
}

// forwardStream signs and writes each entity off in until the channel
// closes, then sends a normal-closure frame. Closing conn on exit is
// what unblocks collectStream's ReadJSON once the forwarder is done.
func forwardStream[T auth.Signable](c *Client, conn *websocket.Conn, in <-chan T, toWire func(T) (auth.Signable, error), method string) error {
	defer conn.Close()
	for e := range in {
		w, err := toWire(e)
		if err != nil {
			continue
		}
		authID := string(e.GetSign())
		key, err := c.store.Get(authID)
		if err != nil {
			continue
		}
		if err := auth.Sign(w, authID, key); err != nil {
			continue
		}
		metrics.StreamChannelDepth.WithLabelValues(method).Set(float64(len(in)))
		if err := conn.WriteJSON(w); err != nil {
			return err
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}

// collectStream reads response frames until the connection closes or
// errors, verifying each before handing it to out.
func collectStream(c *Client, conn *websocket.Conn, out chan<- *entity.ResponseEntity) error {
	for {
		var wireResp wire.Resp
		if err := conn.ReadJSON(&wireResp); err != nil {
			return err
		}
		resp := entity.ResponseEntityFromWire(&wireResp)
		if !auth.Verify(resp, c.store.PrivateKey()) {
			resp.SetAuthenticationFail()
		}
		out <- resp
	}
}
