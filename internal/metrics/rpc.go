// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCCallsInitiated tracks RPC calls started, by method and role
	RPCCallsInitiated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_initiated_total",
			Help:      "Total number of RPC calls initiated",
		},
		[]string{"method", "role"}, // method: register/offline/update/heartbeat/send_* (one per RPC method), role: client, server
	)

	// RPCCallsCompleted tracks completed RPC calls
	RPCCallsCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_completed_total",
			Help:      "Total number of RPC calls completed",
		},
		[]string{"method", "status"}, // status: success, failure, authentication_fail
	)

	// RPCCallsFailed tracks failed RPC calls by error type
	RPCCallsFailed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_failed_total",
			Help:      "Total number of failed RPC calls by error type",
		},
		[]string{"method", "error_type"}, // unknown_submodule, rsa, transport
	)

	// RPCCallDuration tracks RPC call durations
	RPCCallDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC call duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
		[]string{"method"},
	)

	// StreamChannelDepth tracks the depth of pending items on streaming
	// RPC channels (instruct stream, manipulate stream).
	StreamChannelDepth = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "stream_channel_depth",
			Help:      "Number of buffered items on a streaming RPC channel",
		},
		[]string{"method"},
	)
)
