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

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polls/internal/backend/memory"
	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/metrics"
	"github.com/tombee/polls/internal/polls"
	"github.com/tombee/polls/internal/polls/pollstest"
	"github.com/tombee/polls/internal/tracing"
)

func newTestRouter(t *testing.T, reader polls.Reader, m *metrics.Metrics) *Router {
	t.Helper()
	r, err := NewRouter(RouterConfig{
		Reader:    reader,
		Clock:     clock.NewFixed(pollstest.Epoch),
		Metrics:   m,
		Version:   "1.2.3",
		Commit:    "abc123",
		BuildDate: "2025-01-01",
	})
	require.NoError(t, err)
	return r
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouter_Views(t *testing.T) {
	store := memory.New()
	c := clock.NewFixed(pollstest.Epoch)
	past := pollstest.CreateQuestion(t, store, c, "Past question.", -30)
	future := pollstest.CreateQuestion(t, store, c, "Future question.", 30)
	router := newTestRouter(t, store, nil)

	w := serve(router, http.MethodGet, "/polls/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Past question."}, listed(w.Body.String()))

	w = serve(router, http.MethodGet, MustReverse(DetailRoute, past.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Past question.")

	w = serve(router, http.MethodGet, MustReverse(DetailRoute, future.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Routing(t *testing.T) {
	router := newTestRouter(t, memory.New(), nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "index", method: http.MethodGet, path: "/polls/", wantStatus: http.StatusOK},
		{name: "head index", method: http.MethodHead, path: "/polls/", wantStatus: http.StatusOK},
		{name: "post index", method: http.MethodPost, path: "/polls/", wantStatus: http.StatusMethodNotAllowed},
		{name: "delete detail", method: http.MethodDelete, path: "/polls/1/", wantStatus: http.StatusMethodNotAllowed},
		{name: "malformed id", method: http.MethodGet, path: "/polls/abc/", wantStatus: http.StatusNotFound},
		{name: "nested path", method: http.MethodGet, path: "/polls/1/results/", wantStatus: http.StatusNotFound},
		{name: "missing slash redirects", method: http.MethodGet, path: "/polls/1", wantStatus: http.StatusMovedPermanently},
		{name: "unknown path", method: http.MethodGet, path: "/admin/", wantStatus: http.StatusNotFound},
		{name: "root", method: http.MethodGet, path: "/", wantStatus: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_RootRedirectsToIndex(t *testing.T) {
	router := newTestRouter(t, memory.New(), nil)

	w := serve(router, http.MethodGet, "/")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/polls/", w.Header().Get("Location"))
}

func TestRouter_CorrelationHeader(t *testing.T) {
	router := newTestRouter(t, memory.New(), nil)

	for _, path := range []string{"/polls/", "/polls/404/", "/healthz"} {
		w := serve(router, http.MethodGet, path)
		id := tracing.CorrelationID(w.Header().Get(tracing.HeaderCorrelationID))
		assert.True(t, id.IsValid(), "path %s: got correlation id %q", path, id)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/polls/", nil)
	req.Header.Set(tracing.HeaderCorrelationID, "5f0c3a52-8d4e-4d0b-9c53-2f6f9c3b1e7a")
	router.ServeHTTP(w, req)
	assert.Equal(t, "5f0c3a52-8d4e-4d0b-9c53-2f6f9c3b1e7a", w.Header().Get(tracing.HeaderCorrelationID))
}

func TestRouter_Health(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		w := serve(newTestRouter(t, memory.New(), nil), http.MethodGet, "/healthz")

		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["store"])
		assert.True(t, resp.Timestamp.Equal(pollstest.Epoch))
	})

	t.Run("unreachable store", func(t *testing.T) {
		store := &failingStore{err: errors.New("dial tcp: refused")}
		w := serve(newTestRouter(t, store, nil), http.MethodGet, "/healthz")

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "unreachable", resp.Checks["store"])
		assert.NotContains(t, w.Body.String(), "refused")
	})

	t.Run("reader without ping", func(t *testing.T) {
		reader := &countingReader{Reader: memory.New()}
		w := serve(newTestRouter(t, reader, nil), http.MethodGet, "/healthz")

		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Checks)
	})
}

func TestRouter_Version(t *testing.T) {
	w := serve(newTestRouter(t, memory.New(), nil), http.MethodGet, "/version")

	require.Equal(t, http.StatusOK, w.Code)
	var resp VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, VersionResponse{Version: "1.2.3", Commit: "abc123", BuildDate: "2025-01-01"}, resp)
}

func TestRouter_Metrics(t *testing.T) {
	m := metrics.New()
	store := memory.New()
	router := newTestRouter(t, store, m)

	serve(router, http.MethodGet, "/polls/")
	serve(router, http.MethodGet, "/polls/")
	serve(router, http.MethodGet, "/polls/9/")

	w := serve(router, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `polls_http_requests_total{code="200",view="polls:index"} 2`)
	assert.Contains(t, body, `polls_http_requests_total{code="404",view="polls:detail"} 1`)
}

func TestRouter_MetricsDisabled(t *testing.T) {
	w := serve(newTestRouter(t, memory.New(), nil), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_StoreFailureCounted(t *testing.T) {
	m := metrics.New()
	router := newTestRouter(t, &failingStore{err: errors.New("boom")}, m)

	w := serve(router, http.MethodGet, "/polls/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := serve(router, http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, body, `polls_store_errors_total{view="polls:index"} 1`)
	assert.Contains(t, body, `polls_http_requests_total{code="500",view="polls:index"} 1`)
}
