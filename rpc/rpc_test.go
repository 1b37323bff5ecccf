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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/entity"
	"github.com/nihility-go/nihility/wire"
)

// newFabric builds a core Handlers server and a submodule Client wired
// together the way InitCore/InitSubmodule are used in production: the
// submodule loads the core's public key from the same PEM file the core
// persists at startup.
func newFabric(t *testing.T) (*httptest.Server, *Handlers, *Client, *auth.Store) {
	t.Helper()

	coreDir := t.TempDir()
	coreStore := auth.New()
	require.NoError(t, coreStore.InitCore(coreDir))

	handlers := NewHandlers(coreStore)
	server := httptest.NewServer(handlers.Mux())
	t.Cleanup(server.Close)

	subStore := auth.New()
	require.NoError(t, subStore.InitSubmodule("submodule-a", filepath.Join(coreDir, "id_rsa.pub")))

	client := NewClient(server.URL, subStore)
	client.Connect()

	return server, handlers, client, subStore
}

func registrationInfo() wire.SubmoduleInfo {
	return wire.SubmoduleInfo{
		DefaultInstruct: []string{"default"},
		ConnParams: wire.ConnParams{
			ConnectionType: wire.ConnectionHTTP,
			ClientType:     wire.ClientBoth,
		},
	}
}

func TestRegisterThenSendTextInstructRoundTrip(t *testing.T) {
	_, handlers, client, subStore := newFabric(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Register(ctx, registrationInfo())
	require.NoError(t, err)
	require.Equal(t, entity.ResponseSuccess, resp.Code)
	require.Equal(t, Registered, client.State())
	require.NotEmpty(t, subStore.AuthID())

	instruct := entity.NewInstructEntity("do the thing", "some-target", subStore)

	sendResp, err := client.SendTextInstruct(ctx, instruct)
	require.NoError(t, err)
	require.Equal(t, entity.ResponseSuccess, sendResp.Code)

	delivered, ok := handlers.Instructs.Pop(ctx)
	require.True(t, ok)
	require.Equal(t, "do the thing", delivered.Data)
	require.Equal(t, "some-target", delivered.Info.ReceiveManipulateSubmodule)
}

func TestOfflineRemovesKeyAndDisconnects(t *testing.T) {
	_, handlers, client, subStore := newFabric(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Register(ctx, registrationInfo())
	require.NoError(t, err)
	authID := subStore.AuthID()

	resp, err := client.Offline(ctx, registrationInfo())
	require.NoError(t, err)
	require.Equal(t, entity.ResponseSuccess, resp.Code)
	require.Equal(t, Disconnected, client.State())

	_, err = handlers.store.Get(authID)
	require.ErrorIs(t, err, auth.ErrAuthID)
}

func TestHeartbeatBeforeRegistrationFailsUnknownAuthID(t *testing.T) {
	_, _, client, _ := newFabric(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Heartbeat(ctx)
	require.ErrorIs(t, err, auth.ErrAuthID)
}

func TestDoubleRegistrationKeepsFirstIssuedAuthID(t *testing.T) {
	_, _, client, subStore := newFabric(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Register(ctx, registrationInfo())
	require.NoError(t, err)
	first := subStore.AuthID()
	require.NotEmpty(t, first)

	_, err = client.Register(ctx, registrationInfo())
	require.NoError(t, err)
	require.Equal(t, first, subStore.AuthID())
}

func TestSendBeforeConnectFails(t *testing.T) {
	_, _, client, subStore := newFabric(t)
	client.Disconnect()

	instruct := entity.NewInstructEntity("x", "y", subStore)
	_, err := client.SendTextInstruct(context.Background(), instruct)
	var notConnected *NotConnectedError
	require.ErrorAs(t, err, &notConnected)
}

// TestTamperedEnvelopeFailsVerification posts a signed SubmoduleReq whose
// name was mutated after signing directly at the HTTP layer (bypassing
// the client stub, which would never do this), confirming the server
// answers with the benign authentication-error response rather than
// processing the tampered entity.
func TestTamperedEnvelopeFailsVerification(t *testing.T) {
	coreDir := t.TempDir()
	coreStore := auth.New()
	require.NoError(t, coreStore.InitCore(coreDir))
	handlers := NewHandlers(coreStore)
	server := httptest.NewServer(handlers.Mux())
	t.Cleanup(server.Close)

	subStore := auth.New()
	require.NoError(t, subStore.InitSubmodule("submodule-a", filepath.Join(coreDir, "id_rsa.pub")))

	pub, err := auth.EncodePublicPEM(subStore.PublicKey())
	require.NoError(t, err)

	req := &wire.SubmoduleReq{
		Name:            "submodule-a",
		DefaultInstruct: []string{},
		ConnectionParams: &wire.ConnParams{
			ConnectionType: wire.ConnectionHTTP,
			ClientType:     wire.ClientBoth,
			ConnConfig:     map[string]string{wire.PublicKeyConfigKey: string(pub)},
		},
	}
	coreKey, err := subStore.Get("submodule-a")
	require.NoError(t, err)
	require.NoError(t, auth.Sign(req, "submodule-a", coreKey))

	req.Name = "submodule-b" // tamper after signing

	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpResp, err := http.Post(server.URL+pathRegister, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var wireResp wire.Resp
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&wireResp))
	require.Equal(t, wire.ResponseUnknownError, wireResp.Code)
	require.Equal(t, authenticationErrorMessage, string(wireResp.Sign))

	require.Zero(t, handlers.Submodules.Len())
}

// TestSendMultipleTextInstructStreamsResponsesBack exercises the full
// bidi instruct stream: the client forwards several signed entities
// over one websocket connection and the server streams one verified
// response back per entity, in order, then both sides close cleanly
// once the input channel closes.
func TestSendMultipleTextInstructStreamsResponsesBack(t *testing.T) {
	_, handlers, client, subStore := newFabric(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Register(ctx, registrationInfo())
	require.NoError(t, err)

	in := make(chan *entity.InstructEntity, 3)
	out, err := client.SendMultipleTextInstruct(ctx, in)
	require.NoError(t, err)

	const n = 3
	for i := 0; i < n; i++ {
		instruct := entity.NewInstructEntity("do the thing", "some-target", subStore)
		in <- instruct
	}
	close(in)

	for i := 0; i < n; i++ {
		resp, ok := <-out
		require.True(t, ok)
		require.Equal(t, entity.ResponseSuccess, resp.Code)
	}
	_, stillOpen := <-out
	require.False(t, stillOpen)

	require.Equal(t, n, handlers.Instructs.Len())
}

func TestHeartbeatSupervisorStopWithoutStartIsThreadNotStarted(t *testing.T) {
	var h heartbeatSupervisor
	err := h.stop()
	var notStarted *ThreadNotStartedError
	require.ErrorAs(t, err, &notStarted)
}
