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

// Package wire defines the request/response message shapes that cross
// the transport boundary between submodule and core, matching the ten
// RPC methods across the Submodule, Instruct and Manipulate services.
// Every message carries a Sign field and implements auth.Signable.
package wire

// ConnectionType is the submodule's transport preference, exchanged
// during registration.
type ConnectionType string

const (
	ConnectionGrpc             ConnectionType = "Grpc"
	ConnectionPipe             ConnectionType = "Pipe"
	ConnectionWindowsNamedPipe ConnectionType = "WindowsNamedPipe"
	ConnectionHTTP             ConnectionType = "Http"
)

// ClientType describes which streams a submodule wants delivered to it.
type ClientType string

const (
	ClientNotReceive ClientType = "NotReceive"
	ClientBoth       ClientType = "Both"
	ClientInstruct   ClientType = "Instruct"
	ClientManipulate ClientType = "Manipulate"
)

// PublicKeyConfigKey is the reserved conn_config key carrying a
// submodule's RSA public key (PEM) during registration.
const PublicKeyConfigKey = "public_key"

// ConnParams is the submodule's connection configuration, including the
// free-form conn_config map used to carry the public_key handshake
// artifact.
type ConnParams struct {
	ConnectionType ConnectionType    `json:"connection_type"`
	ClientType     ClientType        `json:"client_type"`
	ConnConfig     map[string]string `json:"conn_config"`
}

// SubmoduleInfo describes a submodule's capabilities at registration.
type SubmoduleInfo struct {
	DefaultInstruct []string   `json:"default_instruct"`
	ConnParams      ConnParams `json:"conn_params"`
}

// InstructType is the semantic kind of an instruction.
type InstructType string

const (
	InstructDefault  InstructType = "Default"
	InstructSpecial  InstructType = "Special"
	InstructWaitNext InstructType = "WaitNext"
)

// TextInstruct is the request/response for Instruct.SendTextInstruct and
// the element type of Instruct.SendMultipleTextInstruct.
type TextInstruct struct {
	InstructID                 string       `json:"instruct_id"`
	InstructType               InstructType `json:"instruct_type"`
	ReceiveManipulateSubmodule string       `json:"receive_manipulate_submodule"`
	Text                       string       `json:"text"`
	Sign                       []byte       `json:"sign"`
}

func (m *TextInstruct) GetSign() []byte  { return m.Sign }
func (m *TextInstruct) SetSign(s []byte) { m.Sign = s }

// ManipulateType is the semantic kind of a manipulation.
type ManipulateType string

const (
	ManipulateDefault       ManipulateType = "Default"
	ManipulateOffline       ManipulateType = "Offline"
	ManipulateConfirm       ManipulateType = "Confirm"
	ManipulateCancel        ManipulateType = "Cancel"
	ManipulateConnection    ManipulateType = "Connection"
	ManipulateDisconnection ManipulateType = "Disconnection"
)

// SimpleManipulate is the request/response for
// Manipulate.SendSimpleManipulate: a control signal with no payload.
type SimpleManipulate struct {
	ManipulateID   string         `json:"manipulate_id"`
	ManipulateType ManipulateType `json:"manipulate_type"`
	UseModuleName  string         `json:"use_module_name"`
	Sign           []byte         `json:"sign"`
}

func (m *SimpleManipulate) GetSign() []byte  { return m.Sign }
func (m *SimpleManipulate) SetSign(s []byte) { m.Sign = s }

// TextDisplayManipulate is the request/response for
// Manipulate.SendTextDisplayManipulate and the element type of
// Manipulate.SendMultipleTextDisplayManipulate.
type TextDisplayManipulate struct {
	ManipulateID   string         `json:"manipulate_id"`
	ManipulateType ManipulateType `json:"manipulate_type"`
	UseModuleName  string         `json:"use_module_name"`
	Text           string         `json:"text"`
	Sign           []byte         `json:"sign"`
}

func (m *TextDisplayManipulate) GetSign() []byte  { return m.Sign }
func (m *TextDisplayManipulate) SetSign(s []byte) { m.Sign = s }

// DirectConnectionManipulate is the request/response for
// Manipulate.SendDirectConnectionManipulate.
type DirectConnectionManipulate struct {
	ManipulateID     string         `json:"manipulate_id"`
	ManipulateType   ManipulateType `json:"manipulate_type"`
	UseModuleName    string         `json:"use_module_name"`
	ConnectionParams *ConnParams    `json:"connection_params,omitempty"`
	Sign             []byte         `json:"sign"`
}

func (m *DirectConnectionManipulate) GetSign() []byte  { return m.Sign }
func (m *DirectConnectionManipulate) SetSign(s []byte) { m.Sign = s }

// OperateType is the lifecycle operation a ModuleOperate/SubmoduleReq
// represents; the server overrides this from the RPC method invoked
// regardless of what the sender claimed.
type OperateType string

const (
	OperateUndefined OperateType = "Undefined"
	OperateRegister  OperateType = "Register"
	OperateOffline   OperateType = "Offline"
	OperateHeartbeat OperateType = "Heartbeat"
	OperateUpdate    OperateType = "Update"
)

// SubmoduleReq is the request/response for Submodule.Register,
// Submodule.Offline and Submodule.Update.
type SubmoduleReq struct {
	Name             string      `json:"name"`
	DefaultInstruct  []string    `json:"default_instruct"`
	ConnectionParams *ConnParams `json:"connection_params,omitempty"`
	Sign             []byte      `json:"sign"`
}

func (m *SubmoduleReq) GetSign() []byte  { return m.Sign }
func (m *SubmoduleReq) SetSign(s []byte) { m.Sign = s }

// SubmoduleHeartbeat is the request for Submodule.Heartbeat.
type SubmoduleHeartbeat struct {
	Name string `json:"name"`
	Sign []byte `json:"sign"`
}

func (m *SubmoduleHeartbeat) GetSign() []byte  { return m.Sign }
func (m *SubmoduleHeartbeat) SetSign(s []byte) { m.Sign = s }

// ResponseCode is the wire-level integer tag for ResponseEntity.Code.
type ResponseCode int32

const (
	ResponseSuccess ResponseCode = iota
	ResponseUnknownError
	ResponseUnableToProcess
	ResponseAuthenticationFail
)

// Resp is the response message shared by every RPC method in this
// protocol.
type Resp struct {
	Code ResponseCode `json:"code"`
	Sign []byte       `json:"sign"`
}

func (m *Resp) GetSign() []byte  { return m.Sign }
func (m *Resp) SetSign(s []byte) { m.Sign = s }
