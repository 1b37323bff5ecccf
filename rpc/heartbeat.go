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
	"log"
	"sync"
	"time"

	"github.com/nihility-go/nihility/internal/metrics"
)

const heartbeatInterval = 30 * time.Second

// heartbeatSupervisor owns the client's cancellable background heartbeat
// task. Its cancellation token is independent of the caller's context:
// a failed heartbeat disables the task without tearing down the client
// stub itself.
type heartbeatSupervisor struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// start is a no-op once a task has been started and not yet stopped,
// including when that task has already disabled itself after a failed
// tick; Register calls it on every successful registration.
func (h *heartbeatSupervisor) start(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.started = true
	h.done = make(chan struct{})
	go h.run(ctx, c, h.done)
}

func (h *heartbeatSupervisor) run(ctx context.Context, c *Client, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			start := time.Now()
			_, err := c.Heartbeat(ctx)
			metrics.HeartbeatsSent.WithLabelValues(resultLabel(err == nil)).Inc()
			metrics.HeartbeatTickDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				log.Printf("rpc: heartbeat tick at %s failed, disabling heartbeat task: %v", tick, err)
				h.mu.Lock()
				if h.cancel != nil {
					h.cancel()
				}
				h.mu.Unlock()
				return
			}
		}
	}
}

// stop cancels the task and waits for its goroutine to exit. Calling
// stop without a prior start is ThreadNotStarted("Heartbeat").
func (h *heartbeatSupervisor) stop() error {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return &ThreadNotStartedError{Name: "Heartbeat"}
	}
	cancel := h.cancel
	done := h.done
	h.started = false
	h.mu.Unlock()

	cancel()
	<-done
	return nil
}

// StopHeartbeatThread stops the client's heartbeat task and waits for it
// to exit. It returns a *ThreadNotStartedError when no task is started.
func (c *Client) StopHeartbeatThread() error {
	return c.heartbeat.stop()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
