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

// Package entity holds the internal, richly-typed representations of
// the four polymorphic entity shapes (InstructEntity, ManipulateEntity,
// ModuleOperate, ResponseEntity) and their bidirectional conversions to
// and from the wire package's messages.
package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/wire"
)

// InstructType mirrors wire.InstructType as an internal type so entity
// code never imports wire's tag values directly.
type InstructType string

const (
	InstructDefault  InstructType = "Default"
	InstructSpecial  InstructType = "Special"
	InstructWaitNext InstructType = "WaitNext"
)

// InstructInfo carries an instruction's addressing metadata.
type InstructInfo struct {
	InstructID                 string
	InstructType               InstructType
	ReceiveManipulateSubmodule string
}

// InstructEntity is a semantic command addressed to a target submodule.
type InstructEntity struct {
	Info InstructInfo
	Data string
	Sign []byte
}

func (e *InstructEntity) GetSign() []byte  { return e.Sign }
func (e *InstructEntity) SetSign(s []byte) { e.Sign = s }

// NewInstructEntity builds a default-populated instruct entity: a fresh
// uuid, InstructDefault type, the store's configured default receiver
// when receiveManipulateSubmodule is left empty, and Sign stamped with
// the store's own auth id so it is ready to send without the caller
// having to set it by hand.
func NewInstructEntity(text, receiveManipulateSubmodule string, store *auth.Store) *InstructEntity {
	if receiveManipulateSubmodule == "" {
		receiveManipulateSubmodule = store.DefaultReceiver()
	}
	return &InstructEntity{
		Info: InstructInfo{
			InstructID:                 uuid.NewString(),
			InstructType:               InstructDefault,
			ReceiveManipulateSubmodule: receiveManipulateSubmodule,
		},
		Data: text,
		Sign: []byte(store.AuthID()),
	}
}

// ToWire converts to the wire.TextInstruct message. This conversion is
// infallible: Text is the only payload shape this RPC method carries.
func (e *InstructEntity) ToWire() *wire.TextInstruct {
	start := time.Now()
	w := &wire.TextInstruct{
		InstructID:                 e.Info.InstructID,
		InstructType:               wire.InstructType(e.Info.InstructType),
		ReceiveManipulateSubmodule: e.Info.ReceiveManipulateSubmodule,
		Text:                       e.Data,
		Sign:                       e.Sign,
	}
	metrics.EntitiesProcessed.WithLabelValues("instruct", "success").Inc()
	metrics.EntityProcessingDuration.Observe(time.Since(start).Seconds())
	return w
}

// InstructEntityFromWire is the inverse conversion, also infallible.
func InstructEntityFromWire(w *wire.TextInstruct) *InstructEntity {
	metrics.EntitiesProcessed.WithLabelValues("instruct", "success").Inc()
	return &InstructEntity{
		Info: InstructInfo{
			InstructID:                 w.InstructID,
			InstructType:               InstructType(w.InstructType),
			ReceiveManipulateSubmodule: w.ReceiveManipulateSubmodule,
		},
		Data: w.Text,
		Sign: w.Sign,
	}
}
