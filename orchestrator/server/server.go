// Copyright 2025 BrainSAIT
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the orchestrator over HTTP: dispatch, audit
// inspection, capability discovery, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"brainsait/platform/orchestrator/audit"
	"brainsait/platform/orchestrator/config"
	"brainsait/platform/orchestrator/dispatch"
	"brainsait/platform/orchestrator/provider"
	"brainsait/platform/orchestrator/request"
	"brainsait/platform/orchestrator/sync"
	"brainsait/platform/shared/logger"
)

// Server wires the dispatcher and audit log into an HTTP API.
type Server struct {
	router     *mux.Router
	dispatcher *dispatch.Dispatcher
	auditLog   *audit.Log
	snapshot   func() config.Snapshot
	limiter    *RateLimiter
	log        *logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimiter applies a per-role dispatch rate limit.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// New builds the HTTP server around an existing dispatcher.
func New(snapshot func() config.Snapshot, d *dispatch.Dispatcher, auditLog *audit.Log, opts ...Option) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		dispatcher: d,
		auditLog:   auditLog,
		snapshot:   snapshot,
		log:        logger.New("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dispatch", s.handleDispatch).Methods(http.MethodPost)
	api.HandleFunc("/audit/recent", s.handleAuditRecent).Methods(http.MethodGet)
	api.HandleFunc("/audit/export", s.handleAuditExport).Methods(http.MethodGet)
	api.HandleFunc("/capabilities", s.handleCapabilities).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/prometheus", promhttp.Handler()).Methods(http.MethodGet)
}

// Handler returns the fully middlewared handler.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	})
	return c.Handler(s.router)
}

type dispatchRequest struct {
	Capability string          `json:"capability"`
	Role       string          `json:"role"`
	Payload    json.RawMessage `json:"payload"`
	Persist    bool            `json:"persist,omitempty"`
	Targets    []string        `json:"syncTargets,omitempty"`
	Title      string          `json:"title,omitempty"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type dispatchResponse struct {
	Record audit.Record     `json:"record"`
	Result *provider.Result `json:"result,omitempty"`
	Error  *errorBody       `json:"error,omitempty"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": errorBody{Type: "bad_request", Message: "request body must be JSON"},
		})
		return
	}

	limitKey := req.Role
	if limitKey == "" {
		limitKey = r.RemoteAddr
	}
	if !s.limiter.Allow(r.Context(), limitKey) {
		s.log.Warn(requestID, "dispatch rate limited", map[string]interface{}{"role": req.Role})
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": errorBody{Type: "rate_limited", Message: "too many requests, retry later"},
		})
		return
	}

	var targets []sync.Target
	for _, t := range req.Targets {
		targets = append(targets, sync.Target(t))
	}

	rec, result, err := s.dispatcher.Dispatch(r.Context(), request.Capability(req.Capability), req.Payload, dispatch.Options{
		Role:      req.Role,
		RequestID: requestID,
		Persist:   req.Persist,
		Targets:   targets,
		Title:     req.Title,
	})

	resp := dispatchResponse{Record: rec, Result: result}
	status := http.StatusOK
	if err != nil {
		resp.Error = classify(err)
		status = statusFor(rec.Outcome)
	}
	writeJSON(w, status, resp)
}

func classify(err error) *errorBody {
	var verr *request.ValidationError
	if errors.As(err, &verr) {
		return &errorBody{Type: "validation_error", Message: verr.Error()}
	}
	var unknown *request.UnknownCapabilityError
	if errors.As(err, &unknown) {
		return &errorBody{Type: "unknown_capability", Message: unknown.Error()}
	}
	var unavailable *provider.UnavailableError
	if errors.As(err, &unavailable) {
		return &errorBody{Type: "unavailable", Message: unavailable.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &errorBody{Type: "timeout", Message: err.Error()}
	}
	var provErr *provider.ProviderError
	if errors.As(err, &provErr) {
		return &errorBody{Type: "provider_error", Message: provErr.Error()}
	}
	return &errorBody{Type: "internal", Message: err.Error()}
}

func statusFor(outcome audit.Outcome) int {
	switch outcome {
	case audit.OutcomeValidationError:
		return http.StatusBadRequest
	case audit.OutcomeUnavailable:
		return http.StatusServiceUnavailable
	case audit.OutcomeTimeout:
		return http.StatusGatewayTimeout
	case audit.OutcomeProviderError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) handleAuditRecent(w http.ResponseWriter, r *http.Request) {
	n := 20
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": s.auditLog.Recent(n),
	})
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.auditLog.Export()))
}

type capabilityStatus struct {
	Kind      string `json:"kind"`
	Available bool   `json:"available"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	statuses := make([]capabilityStatus, 0, len(request.AllCapabilities()))
	for _, kind := range request.AllCapabilities() {
		statuses = append(statuses, capabilityStatus{
			Kind:      string(kind),
			Available: snap.Available(kind),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":         string(snap.Mode),
		"capabilities": statuses,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
