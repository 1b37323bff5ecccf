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
	"fmt"
	"time"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/entity"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/wire"
)

// clientStreamCapacity bounds the response channel a client streaming
// call hands back (§5: 12); the server side of a stream uses
// serverStreamCapacity (128).
const (
	clientStreamCapacity = 12
)

// Client is the submodule-side stub. It is deliberately cheap to copy by
// reference: the heartbeat task holds the same *Client as the
// application, so a single lifecycle and key store are shared.
type Client struct {
	transport *httpTransport
	store     *auth.Store
	lifecycle lifecycle
	heartbeat heartbeatSupervisor
}

// NewClient builds a client stub bound to serverAddr (the core's
// http://ip:port or http://[ip]:port address per §6) and the process's
// key store. The returned client starts Disconnected.
func NewClient(serverAddr string, store *auth.Store) *Client {
	return &Client{
		transport: newHTTPTransport(serverAddr),
		store:     store,
	}
}

// Connect marks the stub Connected, allowing signed sends to proceed.
// It performs no network I/O: the underlying HTTP transport is
// connectionless per call.
func (c *Client) Connect() {
	c.lifecycle.set(Connected)
}

// Disconnect drops the stub back to Disconnected without issuing an
// offline RPC; callers that want a clean unregister should call
// Offline instead.
func (c *Client) Disconnect() {
	c.lifecycle.set(Disconnected)
}

// State reports the current lifecycle state.
func (c *Client) State() LifecycleState {
	return c.lifecycle.get()
}

func (c *Client) requireConnected(surface string) error {
	if c.lifecycle.get() == Disconnected {
		return &NotConnectedError{Surface: surface}
	}
	return nil
}

// send implements the signed-send contract shared by every unary RPC
// method (§4.4): look up the recipient key stored under authID, sign req
// (already in wire form) under authID, call, verify the response. authID
// is the caller's argument (the configured name for Register, the
// store's issued auth_id otherwise); the sign field already on req is
// not read.
func send(ctx context.Context, c *Client, method, path string, req auth.Signable, authID string) (*entity.ResponseEntity, error) {
	start := time.Now()
	metrics.RPCCallsInitiated.WithLabelValues(method, "client").Inc()

	key, err := c.store.Get(authID)
	if err != nil {
		metrics.RPCCallsFailed.WithLabelValues(method, "unknown_submodule").Inc()
		return nil, err
	}

	if err := auth.Sign(req, authID, key); err != nil {
		metrics.RPCCallsFailed.WithLabelValues(method, "rsa").Inc()
		return nil, fmt.Errorf("rpc: sign %s: %w", method, err)
	}

	var wireResp wire.Resp
	if err := c.transport.call(ctx, path, req, &wireResp); err != nil {
		metrics.RPCCallsFailed.WithLabelValues(method, "transport").Inc()
		return nil, err
	}

	resp := entity.ResponseEntityFromWire(&wireResp)
	if !auth.Verify(resp, c.store.PrivateKey()) {
		resp.SetAuthenticationFail()
		metrics.RPCCallsCompleted.WithLabelValues(method, "authentication_fail").Inc()
	} else {
		metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	}
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	return resp, nil
}

// Register performs the registration handshake (§4.4's special case):
// it embeds the submodule's own PEM public key into the connection
// config, sends under the submodule's configured name, and on a
// verified response promotes the newly issued auth_id into the store,
// copying the core's key under the new id (I5). It also starts the
// heartbeat supervisor.
func (c *Client) Register(ctx context.Context, info wire.SubmoduleInfo) (*entity.ResponseEntity, error) {
	name := c.store.Name()
	if info.ConnParams.ConnConfig == nil {
		info.ConnParams.ConnConfig = make(map[string]string)
	}
	pub, err := auth.EncodePublicPEM(c.store.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("rpc: encode public key: %w", err)
	}
	info.ConnParams.ConnConfig[wire.PublicKeyConfigKey] = string(pub)

	op := entity.NewModuleOperate(name, info, entity.OperateRegister)
	req, err := op.ToSubmoduleReq()
	if err != nil {
		return nil, err
	}

	resp, err := send(ctx, c, "register", pathRegister, req, name)
	if err != nil {
		return nil, err
	}

	if resp.Code != entity.ResponseAuthenticationFail {
		issuedAuthID := string(resp.Sign)
		coreKey, lookupErr := c.store.Get(name)
		if lookupErr == nil {
			c.store.SetAuthID(issuedAuthID)
			c.store.Insert(issuedAuthID, coreKey)
			c.lifecycle.set(Registered)
			c.heartbeat.start(c)
		}
	}
	metrics.SubmodulesRegistered.WithLabelValues(resultLabel(resp.Code != entity.ResponseAuthenticationFail)).Inc()
	return resp, nil
}

// Offline stops the heartbeat task before issuing the final offline
// call, synchronously with respect to the caller (§5).
func (c *Client) Offline(ctx context.Context, info wire.SubmoduleInfo) (*entity.ResponseEntity, error) {
	if err := c.requireConnected("submodule"); err != nil {
		return nil, err
	}
	_ = c.heartbeat.stop() // ThreadNotStarted is not fatal here: offline is valid before any heartbeat ticked

	op := entity.NewModuleOperate(c.store.Name(), info, entity.OperateOffline)
	req, err := op.ToSubmoduleReq()
	if err != nil {
		return nil, err
	}
	resp, err := send(ctx, c, "offline", pathOffline, req, c.store.AuthID())
	if err != nil {
		return nil, err
	}
	c.lifecycle.set(Disconnected)
	metrics.SubmodulesOffline.Inc()
	return resp, nil
}

// Update re-sends the submodule's current capability descriptor without
// affecting the lifecycle state.
func (c *Client) Update(ctx context.Context, info wire.SubmoduleInfo) (*entity.ResponseEntity, error) {
	if err := c.requireConnected("submodule"); err != nil {
		return nil, err
	}
	op := entity.NewModuleOperate(c.store.Name(), info, entity.OperateUpdate)
	req, err := op.ToSubmoduleReq()
	if err != nil {
		return nil, err
	}
	return send(ctx, c, "update", pathUpdate, req, c.store.AuthID())
}

// Heartbeat issues a single signed heartbeat send; it is invoked by the
// heartbeat supervisor's ticker and may also be called directly.
func (c *Client) Heartbeat(ctx context.Context) (*entity.ResponseEntity, error) {
	op := entity.NewHeartbeatOperate(c.store.Name())
	req, err := op.ToSubmoduleHeartbeat()
	if err != nil {
		return nil, err
	}
	return send(ctx, c, "heartbeat", pathHeartbeat, req, c.store.AuthID())
}

// SendTextInstruct signs and sends a single instruction.
func (c *Client) SendTextInstruct(ctx context.Context, e *entity.InstructEntity) (*entity.ResponseEntity, error) {
	if err := c.requireConnected("instruct"); err != nil {
		return nil, err
	}
	return send(ctx, c, "send_text_instruct", pathTextInstruct, e.ToWire(), c.store.AuthID())
}

// SendSimpleManipulate signs and sends a control-only manipulation.
func (c *Client) SendSimpleManipulate(ctx context.Context, e *entity.ManipulateEntity) (*entity.ResponseEntity, error) {
	if err := c.requireConnected("manipulate"); err != nil {
		return nil, err
	}
	req, err := e.ToSimpleManipulate()
	if err != nil {
		return nil, err
	}
	return send(ctx, c, "send_simple_manipulate", pathSimpleManip, req, c.store.AuthID())
}

// SendTextDisplayManipulate signs and sends a text display effect.
func (c *Client) SendTextDisplayManipulate(ctx context.Context, e *entity.ManipulateEntity) (*entity.ResponseEntity, error) {
	if err := c.requireConnected("manipulate"); err != nil {
		return nil, err
	}
	req, err := e.ToTextDisplayManipulate()
	if err != nil {
		return nil, err
	}
	return send(ctx, c, "send_text_display_manipulate", pathTextManip, req, c.store.AuthID())
}

// SendDirectConnectionManipulate signs and sends a connection-handoff
// manipulation.
func (c *Client) SendDirectConnectionManipulate(ctx context.Context, e *entity.ManipulateEntity) (*entity.ResponseEntity, error) {
	if err := c.requireConnected("manipulate"); err != nil {
		return nil, err
	}
	req, err := e.ToDirectConnectionManipulate()
	if err != nil {
		return nil, err
	}
	return send(ctx, c, "send_direct_connection_manipulate", pathConnManip, req, c.store.AuthID())
}
