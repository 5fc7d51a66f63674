// Copyright 2025 Tom Barlow
//
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

// Package web serves the polls pages and the operational endpoints.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/httputil"
	"github.com/tombee/polls/internal/log"
	"github.com/tombee/polls/internal/metrics"
	"github.com/tombee/polls/internal/polls"
	"github.com/tombee/polls/internal/tracing"
)

// healthCheckTimeout bounds the store ping made by /healthz.
const healthCheckTimeout = 2 * time.Second

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	// Reader serves the index and detail views. If it also implements
	// polls.Pinger, /healthz pings it.
	Reader polls.Reader

	// Clock supplies "now" for publication filtering. Default: clock.System
	Clock clock.Clock

	// Logger receives request and view logs. Default: discard
	Logger *slog.Logger

	// Metrics is served on /metrics and records per-view counters.
	// nil disables both.
	Metrics *metrics.Metrics

	Version   string
	Commit    string
	BuildDate string
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Router wraps an http.ServeMux with the polls routes and middleware.
type Router struct {
	mux     *http.ServeMux
	handler http.Handler
	config  RouterConfig
	logger  *slog.Logger
	views   *Views
}

// NewRouter creates a router with all endpoints registered.
func NewRouter(cfg RouterConfig) (*Router, error) {
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = log.WithComponent(logger, "web")

	var recorder StoreErrorRecorder
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}
	views, err := NewViews(cfg.Reader, cfg.Clock, logger, recorder)
	if err != nil {
		return nil, err
	}

	r := &Router{
		mux:    http.NewServeMux(),
		config: cfg,
		logger: logger,
		views:  views,
	}

	r.mux.HandleFunc(routeByName[IndexRoute].pattern(), views.Index)
	r.mux.HandleFunc(routeByName[DetailRoute].pattern(), views.Detail)

	r.mux.HandleFunc("GET /healthz", r.handleHealth)
	r.mux.HandleFunc("GET /version", r.handleVersion)
	if cfg.Metrics != nil {
		r.mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	// {$} matches only "/", so unknown paths still 404.
	r.mux.HandleFunc("GET /{$}", r.handleRoot)

	r.handler = r.buildChain()
	return r, nil
}

// buildChain wraps the mux from innermost to outermost:
//  1. Metrics (innermost, shares the *http.Request the mux annotates)
//  2. Request logging
//  3. Tracing middleware (creates spans tagged with the correlation ID)
//  4. Correlation middleware
//  5. HTTP trace context extraction (outermost, must run first)
func (r *Router) buildChain() http.Handler {
	var handler http.Handler = r.mux

	if r.config.Metrics != nil {
		handler = r.config.Metrics.Middleware(func(req *http.Request) string {
			return RouteName(req.Pattern)
		}, handler)
	}

	handler = log.NewRequestLogger(r.logger, func(req *http.Request) string {
		return tracing.FromContext(req.Context()).String()
	}).Middleware(handler)

	handler = tracing.TracingMiddleware(handler)
	handler = tracing.CorrelationMiddleware(handler)
	handler = tracing.HTTPMiddleware(handler)

	return handler
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Mux returns the underlying ServeMux for registering additional routes.
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// handleRoot redirects to the index view.
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, MustReverse(IndexRoute), http.StatusFound)
}

// handleHealth reports liveness and, when the reader supports it, store
// connectivity.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: r.config.Clock.Now(),
	}
	status := http.StatusOK

	if pinger, ok := r.config.Reader.(polls.Pinger); ok {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()

		resp.Checks = map[string]string{"store": "ok"}
		if err := pinger.Ping(ctx); err != nil {
			r.logger.WarnContext(req.Context(), "store health check failed", log.Error(err))
			resp.Status = "unhealthy"
			resp.Checks["store"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	httputil.WriteJSON(w, status, resp)
}

// handleVersion handles GET /version.
func (r *Router) handleVersion(w http.ResponseWriter, req *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, VersionResponse{
		Version:   r.config.Version,
		Commit:    r.config.Commit,
		BuildDate: r.config.BuildDate,
	})
}
