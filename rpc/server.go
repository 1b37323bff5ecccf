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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nihility-go/nihility/auth"
	"github.com/nihility-go/nihility/entity"
	"github.com/nihility-go/nihility/internal/logger"
	"github.com/nihility-go/nihility/internal/metrics"
	"github.com/nihility-go/nihility/internal/queue"
	"github.com/nihility-go/nihility/registry"
	"github.com/nihility-go/nihility/wire"
)

// auditTimeout bounds how long a fire-and-forget audit write may run;
// a slow or unreachable database must never stall an RPC handler.
const auditTimeout = 5 * time.Second

const authenticationErrorMessage = "Authentication Error"

// Handlers is the core's RPC server: it verifies every inbound entity
// against the key store, dispatches it onto the matching application
// queue, and signs the response with the sender's own key (§4.5). It
// holds no per-session state — every call is self-contained once the
// sender's key is known.
type Handlers struct {
	store       *auth.Store
	audit       *registry.Store
	Submodules  *queue.Unbounded[*entity.ModuleOperate]
	Instructs   *queue.Unbounded[*entity.InstructEntity]
	Manipulates *queue.Unbounded[*entity.ManipulateEntity]
}

// NewHandlers builds a server bound to store, which must already have
// completed InitCore.
func NewHandlers(store *auth.Store) *Handlers {
	return &Handlers{
		store:       store,
		Submodules:  queue.New[*entity.ModuleOperate](),
		Instructs:   queue.New[*entity.InstructEntity](),
		Manipulates: queue.New[*entity.ManipulateEntity](),
	}
}

// SetAudit attaches an optional lifecycle audit trail. A nil audit (the
// default) disables logging entirely; handlers never depend on it for
// correctness.
func (h *Handlers) SetAudit(audit *registry.Store) {
	h.audit = audit
}

// recordAudit fires the audit write in its own goroutine so a slow or
// unreachable database never adds latency to the calling RPC.
func (h *Handlers) recordAudit(authID, name, event string) {
	if h.audit == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		_ = h.audit.RecordEvent(ctx, authID, name, event)
	}()
}

// Mux builds the HTTP router serving all four services on a single
// port (§6).
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(pathRegister, h.handleRegister)
	mux.HandleFunc(pathOffline, h.handleSubmoduleReq(entity.OperateOffline))
	mux.HandleFunc(pathUpdate, h.handleSubmoduleReq(entity.OperateUpdate))
	mux.HandleFunc(pathHeartbeat, h.handleHeartbeat)
	mux.HandleFunc(pathTextInstruct, h.handleTextInstruct)
	mux.HandleFunc(pathSimpleManip, h.handleSimpleManipulate)
	mux.HandleFunc(pathTextManip, h.handleTextDisplayManipulate)
	mux.HandleFunc(pathConnManip, h.handleDirectConnectionManipulate)
	mux.HandleFunc(pathStreamInstruct, h.handleStreamInstruct)
	mux.HandleFunc(pathStreamManip, h.handleStreamManipulate)
	return mux
}

// verifyAndRespondOnFailure runs the common verify step (§4.5 step 2):
// on failure it writes the benign-status authentication-error response
// directly and returns false, so the caller must stop processing.
func (h *Handlers) verifyAndRespondOnFailure(w http.ResponseWriter, e auth.Signable, method string) bool {
	if auth.Verify(e, h.store.PrivateKey()) {
		return true
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "authentication_fail").Inc()
	writeJSON(w, http.StatusOK, &wire.Resp{
		Code: wire.ResponseUnknownError,
		Sign: []byte(authenticationErrorMessage),
	})
	return false
}

// signResponse builds and signs the default-Success response entity for
// authID, using the sender's own public key as recipient (§4.5 step 6,
// §9's "sign means encapsulate for the recipient").
func (h *Handlers) signResponse(authID string) (*wire.Resp, error) {
	senderKey, err := h.store.Get(authID)
	if err != nil {
		return nil, err
	}
	resp := entity.NewResponseEntity()
	if err := auth.Sign(resp, authID, senderKey); err != nil {
		return nil, err
	}
	return resp.ToWire(), nil
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const method = "register"
	metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

	var req wire.SubmoduleReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.verifyAndRespondOnFailure(w, &req, method) {
		return
	}
	op, err := entity.ModuleOperateFromSubmoduleReq(&req, entity.OperateRegister)
	if err != nil {
		httpError(w, err)
		return
	}

	pubPEM, ok := op.Info.ConnParams.ConnConfig[wire.PublicKeyConfigKey]
	if !ok {
		httpError(w, &ConfigFieldMissingError{Field: wire.PublicKeyConfigKey})
		return
	}
	submodulePub, err := auth.DecodePublicPEM([]byte(pubPEM))
	if err != nil {
		httpError(w, fmt.Errorf("rpc: decode submodule public key: %w", err))
		return
	}

	issuedAuthID := uuid.NewString()
	h.store.Insert(issuedAuthID, submodulePub)
	op.SetSign([]byte(issuedAuthID))

	h.Submodules.Push(op)
	h.recordAudit(issuedAuthID, op.Name, "register")
	metrics.SubmodulesRegistered.WithLabelValues("success").Inc()

	resp, err := h.signResponse(issuedAuthID)
	if err != nil {
		httpError(w, err)
		return
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

// handleSubmoduleReq builds the Offline/Update handler: the same verify,
// convert, dispatch and sign steps as register, with operate_type fixed
// by which route matched and no key issued or inserted. Offline removes
// the sender's key once its response has been signed.
func (h *Handlers) handleSubmoduleReq(opType entity.OperateType) http.HandlerFunc {
	method := map[entity.OperateType]string{
		entity.OperateOffline: "offline",
		entity.OperateUpdate:  "update",
	}[opType]

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

		var req wire.SubmoduleReq
		if !decodeJSON(w, r, &req) {
			return
		}
		if !h.verifyAndRespondOnFailure(w, &req, method) {
			return
		}
		op, err := entity.ModuleOperateFromSubmoduleReq(&req, opType)
		if err != nil {
			httpError(w, err)
			return
		}

		authID := string(op.GetSign())
		h.Submodules.Push(op)
		h.recordAudit(authID, op.Name, method)

		resp, err := h.signResponse(authID)
		if err != nil {
			httpError(w, err)
			return
		}
		if opType == entity.OperateOffline {
			h.store.Remove(authID)
			metrics.SubmodulesOffline.Inc()
		}
		metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
		metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handlers) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const method = "heartbeat"
	metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

	var req wire.SubmoduleHeartbeat
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.verifyAndRespondOnFailure(w, &req, method) {
		return
	}
	op := entity.ModuleOperateFromHeartbeat(&req)

	authID := string(op.GetSign())
	h.Submodules.Push(op)
	h.recordAudit(authID, op.Name, "heartbeat")

	resp, err := h.signResponse(authID)
	if err != nil {
		httpError(w, err)
		return
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleTextInstruct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const method = "send_text_instruct"
	metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

	var req wire.TextInstruct
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.verifyAndRespondOnFailure(w, &req, method) {
		return
	}
	e := entity.InstructEntityFromWire(&req)

	authID := string(e.GetSign())
	h.Instructs.Push(e)

	resp, err := h.signResponse(authID)
	if err != nil {
		httpError(w, err)
		return
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleSimpleManipulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const method = "send_simple_manipulate"
	metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

	var req wire.SimpleManipulate
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.verifyAndRespondOnFailure(w, &req, method) {
		return
	}
	e := entity.ManipulateEntityFromSimple(&req)

	authID := string(e.GetSign())
	h.Manipulates.Push(e)

	resp, err := h.signResponse(authID)
	if err != nil {
		httpError(w, err)
		return
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleTextDisplayManipulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const method = "send_text_display_manipulate"
	metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

	var req wire.TextDisplayManipulate
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.verifyAndRespondOnFailure(w, &req, method) {
		return
	}
	e := entity.ManipulateEntityFromTextDisplay(&req)

	authID := string(e.GetSign())
	h.Manipulates.Push(e)

	resp, err := h.signResponse(authID)
	if err != nil {
		httpError(w, err)
		return
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleDirectConnectionManipulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const method = "send_direct_connection_manipulate"
	metrics.RPCCallsInitiated.WithLabelValues(method, "server").Inc()

	var req wire.DirectConnectionManipulate
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.verifyAndRespondOnFailure(w, &req, method) {
		return
	}
	e, err := entity.ManipulateEntityFromDirectConnection(&req)
	if err != nil {
		httpError(w, err)
		return
	}

	authID := string(e.GetSign())
	h.Manipulates.Push(e)

	resp, err := h.signResponse(authID)
	if err != nil {
		httpError(w, err)
		return
	}
	metrics.RPCCallsCompleted.WithLabelValues(method, "success").Inc()
	metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, fmt.Errorf("rpc: decode request: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// httpError classifies the handler-boundary failure into a FabricError
// (request-shape problems get ErrCodeValidationError, anything else
// ErrCodeInternal), logs it with its code and cause, and answers the
// client with the FabricError's own message.
func httpError(w http.ResponseWriter, err error) {
	code := logger.ErrCodeInternal
	var cfm *ConfigFieldMissingError
	if errors.As(err, &cfm) ||
		errors.Is(err, entity.ErrCreateManipulateReq) ||
		errors.Is(err, entity.ErrCreateSubmoduleReq) ||
		errors.Is(err, entity.ErrCreateSubmoduleHeartbeat) ||
		errors.Is(err, entity.ErrCreateManipulateEntity) {
		code = logger.ErrCodeValidationError
	}

	fe := logger.NewFabricError(code, "rpc request rejected", err)
	logger.GetDefaultLogger().Error("rpc handler error", logger.String("code", fe.Code), logger.Error(fe))
	http.Error(w, fe.Error(), http.StatusBadRequest)
}
