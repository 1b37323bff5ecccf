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

package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/wire"
)

// ManipulateType mirrors wire.ManipulateType.
type ManipulateType string

const (
	ManipulateDefault       ManipulateType = "Default"
	ManipulateOffline       ManipulateType = "Offline"
	ManipulateConfirm       ManipulateType = "Confirm"
	ManipulateCancel        ManipulateType = "Cancel"
	ManipulateConnection    ManipulateType = "Connection"
	ManipulateDisconnection ManipulateType = "Disconnection"
)

// ManipulateDataKind discriminates the three payload shapes a
// ManipulateEntity can carry.
type ManipulateDataKind int

const (
	ManipulateDataText ManipulateDataKind = iota
	ManipulateDataSimple
	ManipulateDataConnectionParams
)

// ManipulateInfo carries a manipulation's addressing metadata.
type ManipulateInfo struct {
	ManipulateID   string
	ManipulateType ManipulateType
	UseModuleName  string
}

// ManipulateEntity is a control/display effect to be rendered by a
// submodule. DataKind discriminates which of Text/ConnParams is
// populated; Simple carries no payload beyond Info.
type ManipulateEntity struct {
	Info       ManipulateInfo
	DataKind   ManipulateDataKind
	Text       string
	ConnParams *wire.ConnParams
	Sign       []byte
}

func (e *ManipulateEntity) GetSign() []byte  { return e.Sign }
func (e *ManipulateEntity) SetSign(s []byte) { e.Sign = s }

// NewSimpleManipulateEntity builds a Simple-payload manipulation (a bare
// control signal, e.g. Confirm/Cancel/Offline), with Sign stamped from
// store's own auth id so it is ready to send.
func NewSimpleManipulateEntity(useModuleName string, mtype ManipulateType, store *auth.Store) *ManipulateEntity {
	return &ManipulateEntity{
		Info: ManipulateInfo{
			ManipulateID:   uuid.NewString(),
			ManipulateType: mtype,
			UseModuleName:  useModuleName,
		},
		DataKind: ManipulateDataSimple,
		Sign:     []byte(store.AuthID()),
	}
}

// NewTextManipulateEntity builds a Text-payload manipulation (a display
// effect carrying a rendered string), with Sign stamped from store's
// own auth id so it is ready to send.
func NewTextManipulateEntity(useModuleName, text string, store *auth.Store) *ManipulateEntity {
	return &ManipulateEntity{
		Info: ManipulateInfo{
			ManipulateID:   uuid.NewString(),
			ManipulateType: ManipulateDefault,
			UseModuleName:  useModuleName,
		},
		DataKind: ManipulateDataText,
		Text:     text,
		Sign:     []byte(store.AuthID()),
	}
}

// NewConnectionManipulateEntity builds a ConnectionParams-payload
// manipulation (e.g. Connection/Disconnection control messages), with
// Sign stamped from store's own auth id so it is ready to send.
func NewConnectionManipulateEntity(useModuleName string, mtype ManipulateType, params wire.ConnParams, store *auth.Store) *ManipulateEntity {
	return &ManipulateEntity{
		Info: ManipulateInfo{
			ManipulateID:   uuid.NewString(),
			ManipulateType: mtype,
			UseModuleName:  useModuleName,
		},
		DataKind:   ManipulateDataConnectionParams,
		ConnParams: &params,
		Sign:       []byte(store.AuthID()),
	}
}

// ToSimpleManipulate converts to wire.SimpleManipulate. Fails
// ErrCreateManipulateReq unless the payload is Simple.
func (e *ManipulateEntity) ToSimpleManipulate() (*wire.SimpleManipulate, error) {
	if e.DataKind != ManipulateDataSimple {
		return nil, recordConversionError("manipulate", fmt.Errorf("%w: expected Simple payload", ErrCreateManipulateReq))
	}
	defer recordConversionSuccess("manipulate")
	return &wire.SimpleManipulate{
		ManipulateID:   e.Info.ManipulateID,
		ManipulateType: wire.ManipulateType(e.Info.ManipulateType),
		UseModuleName:  e.Info.UseModuleName,
		Sign:           e.Sign,
	}, nil
}

// ToTextDisplayManipulate converts to wire.TextDisplayManipulate. Fails
// ErrCreateManipulateReq unless the payload is Text.
func (e *ManipulateEntity) ToTextDisplayManipulate() (*wire.TextDisplayManipulate, error) {
	if e.DataKind != ManipulateDataText {
		return nil, recordConversionError("manipulate", fmt.Errorf("%w: expected Text payload", ErrCreateManipulateReq))
	}
	defer recordConversionSuccess("manipulate")
	return &wire.TextDisplayManipulate{
		ManipulateID:   e.Info.ManipulateID,
		ManipulateType: wire.ManipulateType(e.Info.ManipulateType),
		UseModuleName:  e.Info.UseModuleName,
		Text:           e.Text,
		Sign:           e.Sign,
	}, nil
}

// ToDirectConnectionManipulate converts to
// wire.DirectConnectionManipulate. Fails ErrCreateManipulateReq unless
// the payload is ConnectionParams.
func (e *ManipulateEntity) ToDirectConnectionManipulate() (*wire.DirectConnectionManipulate, error) {
	if e.DataKind != ManipulateDataConnectionParams {
		return nil, recordConversionError("manipulate", fmt.Errorf("%w: expected ConnectionParams payload", ErrCreateManipulateReq))
	}
	defer recordConversionSuccess("manipulate")
	return &wire.DirectConnectionManipulate{
		ManipulateID:     e.Info.ManipulateID,
		ManipulateType:   wire.ManipulateType(e.Info.ManipulateType),
		UseModuleName:    e.Info.UseModuleName,
		ConnectionParams: e.ConnParams,
		Sign:             e.Sign,
	}, nil
}

// ManipulateEntityFromSimple is infallible: Simple carries no optional
// substructure.
func ManipulateEntityFromSimple(w *wire.SimpleManipulate) *ManipulateEntity {
	defer recordConversionSuccess("manipulate")
	return &ManipulateEntity{
		Info: ManipulateInfo{
			ManipulateID:   w.ManipulateID,
			ManipulateType: ManipulateType(w.ManipulateType),
			UseModuleName:  w.UseModuleName,
		},
		DataKind: ManipulateDataSimple,
		Sign:     w.Sign,
	}
}

// ManipulateEntityFromTextDisplay is infallible.
func ManipulateEntityFromTextDisplay(w *wire.TextDisplayManipulate) *ManipulateEntity {
	defer recordConversionSuccess("manipulate")
	return &ManipulateEntity{
		Info: ManipulateInfo{
			ManipulateID:   w.ManipulateID,
			ManipulateType: ManipulateType(w.ManipulateType),
			UseModuleName:  w.UseModuleName,
		},
		DataKind: ManipulateDataText,
		Text:     w.Text,
		Sign:     w.Sign,
	}
}

// ManipulateEntityFromDirectConnection fails ErrCreateManipulateEntity
// when ConnectionParams is absent.
func ManipulateEntityFromDirectConnection(w *wire.DirectConnectionManipulate) (*ManipulateEntity, error) {
	if w.ConnectionParams == nil {
		return nil, recordConversionError("manipulate", ErrCreateManipulateEntity)
	}
	defer recordConversionSuccess("manipulate")
	return &ManipulateEntity{
		Info: ManipulateInfo{
			ManipulateID:   w.ManipulateID,
			ManipulateType: ManipulateType(w.ManipulateType),
			UseModuleName:  w.UseModuleName,
		},
		DataKind:   ManipulateDataConnectionParams,
		ConnParams: w.ConnectionParams,
		Sign:       w.Sign,
	}, nil
}

func recordConversionSuccess(kind string) {
	metrics.EntitiesProcessed.WithLabelValues(kind, "success").Inc()
}

func recordConversionError(kind string, err error) error {
	metrics.EntitiesProcessed.WithLabelValues(kind, "failure").Inc()
	metrics.EntityConversionErrors.WithLabelValues(kind, "payload_mismatch").Inc()
	return err
}
