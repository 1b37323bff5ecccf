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
	// EntitiesProcessed tracks entity<->wire conversions
	EntitiesProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entities",
			Name:      "processed_total",
			Help:      "Total number of entity conversions processed",
		},
		[]string{"entity", "status"}, // instruct/manipulate/submodule, success/failure
	)

	// EntityConversionErrors tracks failed entity conversions by kind
	EntityConversionErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entities",
			Name:      "conversion_errors_total",
			Help:      "Total number of entity conversion errors by kind",
		},
		[]string{"entity", "kind"},
	)

	// EntityProcessingDuration tracks entity conversion duration
	EntityProcessingDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "entities",
			Name:      "processing_duration_seconds",
			Help:      "Entity conversion duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~205ms
		},
	)

	// EntityPayloadSize tracks entity payload sizes on the wire
	EntityPayloadSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "entities",
			Name:      "payload_size_bytes",
			Help:      "Entity wire payload size in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10), // 64B to 16MB
		},
	)
)
