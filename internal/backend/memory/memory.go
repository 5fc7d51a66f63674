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

// Package memory provides an in-memory question store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tombee/polls/internal/polls"
)

// Compile-time interface assertions.
var (
	_ polls.Store  = (*Backend)(nil)
	_ polls.Lister = (*Backend)(nil)
	_ polls.Pinger = (*Backend)(nil)
)

// Backend is an in-memory storage backend. It hands out copies so callers
// cannot mutate stored rows.
type Backend struct {
	mu        sync.RWMutex
	nextID    int64
	questions map[int64]*polls.Question
}

// New creates a new in-memory backend.
func New() *Backend {
	return &Backend{
		nextID:    1,
		questions: make(map[int64]*polls.Question),
	}
}

// CreateQuestion stores q and assigns its ID.
func (b *Backend) CreateQuestion(ctx context.Context, q *polls.Question) error {
	if err := polls.Validate(q); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	q.ID = b.nextID
	b.nextID++

	stored := *q
	stored.PubDate = q.PubDate.UTC()
	b.questions[q.ID] = &stored
	return nil
}

// ListPublished returns questions published on or before at, newest first.
func (b *Backend) ListPublished(ctx context.Context, at time.Time) ([]*polls.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*polls.Question, 0, len(b.questions))
	for _, q := range b.questions {
		if !q.IsPublished(at) {
			continue
		}
		c := *q
		result = append(result, &c)
	}

	polls.SortNewestFirst(result)
	return result, nil
}

// GetPublished retrieves a question by ID if it is published at at.
func (b *Backend) GetPublished(ctx context.Context, id int64, at time.Time) (*polls.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, exists := b.questions[id]
	if !exists || !q.IsPublished(at) {
		return nil, polls.NotFound(id)
	}
	c := *q
	return &c, nil
}

// ListAll returns every question, newest first.
func (b *Backend) ListAll(ctx context.Context) ([]*polls.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*polls.Question, 0, len(b.questions))
	for _, q := range b.questions {
		c := *q
		result = append(result, &c)
	}

	polls.SortNewestFirst(result)
	return result, nil
}

// Ping always succeeds.
func (b *Backend) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the memory backend.
func (b *Backend) Close() error {
	return nil
}
