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

// Package tracing provides correlation IDs and OpenTelemetry spans for
// requests and store calls.
package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationID identifies one request across log lines and services.
// It is an RFC 4122 UUID string.
type CorrelationID string

type correlationKeyType struct{}

var correlationKey = correlationKeyType{}

// HTTP header names for correlation ID propagation.
const (
	// HeaderCorrelationID is the primary header for correlation ID.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an alternative header accepted for compatibility.
	HeaderRequestID = "X-Request-ID"
)

// NewCorrelationID generates a new unique correlation ID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.New().String())
}

// String returns the string representation of the correlation ID.
func (c CorrelationID) String() string {
	return string(c)
}

// IsValid reports whether the ID is a canonical 36-character UUID.
func (c CorrelationID) IsValid() bool {
	if len(c) != 36 {
		return false
	}
	_, err := uuid.Parse(string(c))
	return err == nil
}

// ToContext adds the correlation ID to the context.
func ToContext(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

// FromContext returns the correlation ID stored in ctx, or "" if none.
func FromContext(ctx context.Context) CorrelationID {
	if id, ok := ctx.Value(correlationKey).(CorrelationID); ok {
		return id
	}
	return ""
}

// ExtractFromRequest returns the first valid correlation ID found in
// X-Correlation-ID or X-Request-ID.
func ExtractFromRequest(r *http.Request) (CorrelationID, bool) {
	for _, header := range []string{HeaderCorrelationID, HeaderRequestID} {
		if id := CorrelationID(r.Header.Get(header)); id.IsValid() {
			return id, true
		}
	}
	return "", false
}

// CorrelationMiddleware stores a correlation ID in the request context and
// echoes it in the X-Correlation-ID response header. A missing or
// malformed incoming ID is replaced with a fresh one.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, found := ExtractFromRequest(r)
		if !found {
			id = NewCorrelationID()
		}

		r = r.WithContext(ToContext(r.Context(), id))
		w.Header().Set(HeaderCorrelationID, id.String())

		next.ServeHTTP(w, r)
	})
}
