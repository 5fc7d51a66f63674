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

// Package metrics exposes Prometheus instrumentation for the polls views.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tombee/polls/internal/log"
)

// UnmatchedView labels requests that did not hit a named route.
const UnmatchedView = "unmatched"

// Metrics holds the collectors registered for one HTTP server.
type Metrics struct {
	registry *prometheus.Registry

	// requests counts completed requests by view and status code
	requests *prometheus.CounterVec

	// duration observes request latency by view
	duration *prometheus.HistogramVec

	// inFlight tracks requests currently being served
	inFlight prometheus.Gauge

	// storeErrors counts failed store calls by view
	storeErrors *prometheus.CounterVec
}

// New creates a registry with Go runtime and process collectors plus the
// polls HTTP collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polls_http_requests_total",
				Help: "Total HTTP requests by view and status code",
			},
			[]string{"view", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "polls_http_request_duration_seconds",
				Help:    "HTTP request latency by view",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "polls_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polls_store_errors_total",
				Help: "Total failed store queries by view",
			},
			[]string{"view"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordStoreError increments the store error counter for view.
func (m *Metrics) RecordStoreError(view string) {
	m.storeErrors.WithLabelValues(view).Inc()
}

// Middleware records request count and latency. view maps a request to
// its route name once the inner handler has run; an empty name is
// recorded as UnmatchedView.
func (m *Metrics) Middleware(view func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		rec := log.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		name := view(r)
		if name == "" {
			name = UnmatchedView
		}
		m.requests.WithLabelValues(name, strconv.Itoa(rec.Status)).Inc()
		m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	})
}
