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

package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polls/internal/backend/memory"
	"github.com/tombee/polls/internal/backend/sqlite"
	"github.com/tombee/polls/internal/config"
	"github.com/tombee/polls/internal/polls"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := Open(ctx, config.BackendConfig{Type: config.BackendMemory})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &memory.Backend{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "polls.db")
		store, err := Open(ctx, config.BackendConfig{
			Type:   config.BackendSQLite,
			SQLite: config.SQLiteConfig{Path: path},
		})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &sqlite.Backend{}, store)

		_, ok := store.(polls.Pinger)
		assert.True(t, ok, "sqlite store should support health checks")
	})

	t.Run("sqlite without path", func(t *testing.T) {
		_, err := Open(ctx, config.BackendConfig{Type: config.BackendSQLite})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create sqlite backend")
	})

	t.Run("postgres without url", func(t *testing.T) {
		_, err := Open(ctx, config.BackendConfig{Type: config.BackendPostgres})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create postgres backend")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, config.BackendConfig{Type: "etcd"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown backend type "etcd"`)
	})
}
