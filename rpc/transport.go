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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// servicePaths maps each RPC method onto the HTTP path it is served on.
// The core binds a single port serving all four services (§6); paths
// disambiguate the method the way the teacher's transport disambiguates
// SAGE message kinds by header instead of path.
const (
	pathRegister      = "/submodule/register"
	pathOffline       = "/submodule/offline"
	pathUpdate        = "/submodule/update"
	pathHeartbeat     = "/submodule/heartbeat"
	pathTextInstruct  = "/instruct/text"
	pathStreamInstruct = "/instruct/stream"
	pathSimpleManip   = "/manipulate/simple"
	pathTextManip     = "/manipulate/text"
	pathStreamManip   = "/manipulate/stream"
	pathConnManip     = "/manipulate/connection"
)

// httpTransport is the unary request/response leg, POSTing a JSON body
// and decoding a JSON response, matching the teacher's wireMessage/
// wireResponse envelope idiom but with one concrete struct pair per RPC
// method instead of a single opaque payload.
type httpTransport struct {
	baseURL string
	client  *http.Client
}

func newHTTPTransport(baseURL string) *httpTransport {
	return &httpTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *httpTransport) call(ctx context.Context, path string, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("rpc: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrTransport, httpResp.StatusCode, data)
	}
	if err := json.Unmarshal(data, resp); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return nil
}

// wsURL rewrites an http(s) base URL into the matching ws(s) URL for the
// streaming surfaces.
func wsURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("rpc: %w: %v", ErrTransport, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = path
	return u.String(), nil
}

// dialStream opens the websocket leg used by both streaming RPC
// methods. Each call gets its own dedicated connection: one bidi stream
// per call, matching the teacher's per-connection read-loop pattern in
// pkg/agent/transport/websocket rather than multiplexing calls over a
// shared socket.
func dialStream(ctx context.Context, baseURL, path string) (*websocket.Conn, error) {
	target, err := wsURL(baseURL, path)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, target, err)
	}
	return conn, nil
}
