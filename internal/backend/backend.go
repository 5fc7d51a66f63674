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

// Package backend selects and opens a question store from configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/tombee/polls/internal/backend/memory"
	"github.com/tombee/polls/internal/backend/postgres"
	"github.com/tombee/polls/internal/backend/sqlite"
	"github.com/tombee/polls/internal/config"
	"github.com/tombee/polls/internal/polls"
)

// Open creates the store named by cfg.Type. The caller owns the returned
// store and must Close it.
func Open(ctx context.Context, cfg config.BackendConfig) (polls.Store, error) {
	switch cfg.Type {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite, "":
		be, err := sqlite.New(sqlite.Config{
			Path: cfg.SQLite.Path,
			WAL:  cfg.SQLite.WAL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite backend: %w", err)
		}
		return be, nil
	case config.BackendPostgres:
		be, err := postgres.New(ctx, postgres.Config{
			ConnectionString: cfg.Postgres.ConnectionString,
			MaxConns:         cfg.Postgres.MaxConns,
			ConnMaxLifetime:  cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres backend: %w", err)
		}
		return be, nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
