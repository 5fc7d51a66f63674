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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverse(t *testing.T) {
	tests := []struct {
		name    string
		route   string
		args    []any
		want    string
		wantErr string
	}{
		{name: "index", route: IndexRoute, want: "/polls/"},
		{name: "detail int64", route: DetailRoute, args: []any{int64(42)}, want: "/polls/42/"},
		{name: "detail escapes", route: DetailRoute, args: []any{"a b"}, want: "/polls/a%20b/"},
		{name: "unknown route", route: "polls:results", wantErr: `no route named "polls:results"`},
		{name: "missing arg", route: DetailRoute, wantErr: "missing value for {id}"},
		{name: "extra arg", route: IndexRoute, args: []any{1}, wantErr: "takes 0 arguments, got 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reverse(tt.route, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustReverse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustReverse("nope") })
	assert.Equal(t, "/polls/7/", MustReverse(DetailRoute, 7))
}

func TestRouteName(t *testing.T) {
	assert.Equal(t, IndexRoute, RouteName("GET /polls/{$}"))
	assert.Equal(t, DetailRoute, RouteName("GET /polls/{id}/{$}"))
	assert.Equal(t, "", RouteName("GET /healthz"))
	assert.Equal(t, "", RouteName(""))
}
