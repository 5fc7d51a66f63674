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
	"log/slog"
	"net/http"
	"time"
)

// StatusRecorder wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
	Bytes  int
}

// NewStatusRecorder wraps w. Status defaults to 200 for handlers that never
// call WriteHeader.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

// WriteHeader records the status code.
func (r *StatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Write records the body size.
func (r *StatusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.Bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *StatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogger logs one line per completed HTTP request. The correlation
// ID is read through correlationID so this package does not depend on the
// tracing package.
type RequestLogger struct {
	logger        *slog.Logger
	correlationID func(*http.Request) string
}

// NewRequestLogger creates request logging middleware. correlationID may be nil.
func NewRequestLogger(logger *slog.Logger, correlationID func(*http.Request) string) *RequestLogger {
	return &RequestLogger{logger: logger, correlationID: correlationID}
}

// Middleware wraps next with request logging. 5xx responses log at error
// level, 4xx at warn, everything else at info.
func (m *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		logger := m.logger
		if m.correlationID != nil {
			logger = WithCorrelationID(logger, m.correlationID(r))
		}

		level := slog.LevelInfo
		switch {
		case rec.Status >= http.StatusInternalServerError:
			level = slog.LevelError
		case rec.Status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.Log(r.Context(), level, "request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int(StatusKey, rec.Status),
			slog.Int("bytes", rec.Bytes),
			slog.Int64(DurationKey, time.Since(start).Milliseconds()),
		)
	})
}
