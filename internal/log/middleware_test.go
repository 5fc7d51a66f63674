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

package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := NewStatusRecorder(rec)

	if sr.Status != http.StatusOK {
		t.Errorf("default status = %d, want 200", sr.Status)
	}

	sr.WriteHeader(http.StatusTeapot)
	n, err := sr.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}

	if sr.Status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status not recorded: %d / %d", sr.Status, rec.Code)
	}
	if sr.Bytes != 5 {
		t.Errorf("bytes = %d, want 5", sr.Bytes)
	}
	if sr.Unwrap() != rec {
		t.Error("Unwrap should return the wrapped writer")
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusOK, "INFO"},
		{"not found", http.StatusNotFound, "WARN"},
		{"server error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})
			mw := NewRequestLogger(logger, func(*http.Request) string { return "cid-1" })

			handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/polls/1/", nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("invalid JSON %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["path"] != "/polls/1/" || entry["method"] != "GET" {
				t.Errorf("unexpected request fields: %v", entry)
			}
			if entry[StatusKey] != float64(tt.status) {
				t.Errorf("status = %v, want %d", entry[StatusKey], tt.status)
			}
			if entry["bytes"] != float64(4) {
				t.Errorf("bytes = %v, want 4", entry["bytes"])
			}
			if entry[CorrelationIDKey] != "cid-1" {
				t.Errorf("correlation_id = %v", entry[CorrelationIDKey])
			}
			if _, ok := entry[DurationKey]; !ok {
				t.Error("missing duration_ms")
			}
		})
	}
}

func TestRequestLogger_NilCorrelation(t *testing.T) {
	var buf bytes.Buffer
	mw := NewRequestLogger(New(&Config{Output: &buf}), nil)
	mw.Middleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if strings.Contains(buf.String(), CorrelationIDKey) {
		t.Errorf("unexpected correlation id in %q", buf.String())
	}
}
