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
	// SubmodulesRegistered tracks total submodule registrations
	SubmodulesRegistered = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submodules",
			Name:      "registered_total",
			Help:      "Total number of submodule registrations",
		},
		[]string{"status"}, // success, failure
	)

	// SubmodulesOnline tracks currently connected submodules
	SubmodulesOnline = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "submodules",
			Name:      "online",
			Help:      "Number of currently online submodules",
		},
	)

	// SubmodulesOffline tracks completed Offline calls (client and core side)
	SubmodulesOffline = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submodules",
			Name:      "offline_total",
			Help:      "Total number of submodules marked offline",
		},
	)

	// HeartbeatsSent tracks heartbeat ticks sent by the supervisor
	HeartbeatsSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "heartbeat",
			Name:      "sent_total",
			Help:      "Total number of heartbeat ticks sent",
		},
		[]string{"status"}, // success, failure
	)

	// HeartbeatTickDuration tracks the duration of a single heartbeat round-trip
	HeartbeatTickDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "heartbeat",
			Name:      "tick_duration_seconds",
			Help:      "Heartbeat round-trip duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to 1.6s
		},
	)

	// SubmoduleConnectionDuration tracks how long a submodule stayed connected
	SubmoduleConnectionDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "submodules",
			Name:      "connection_duration_seconds",
			Help:      "Duration a submodule remained registered and online",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12), // 1s to ~48.5 days
		},
	)
)
