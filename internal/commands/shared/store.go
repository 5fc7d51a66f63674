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

package shared

import (
	"context"

	"github.com/tombee/polls/internal/backend"
	"github.com/tombee/polls/internal/config"
	"github.com/tombee/polls/internal/polls"
)

// LoadConfig loads configuration from --config, or from the default config
// file when it exists.
func LoadConfig() (*config.Config, error) {
	path := GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// OpenStore loads configuration and opens the configured store.
func OpenStore(ctx context.Context) (polls.Store, *config.Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := backend.Open(ctx, cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}
