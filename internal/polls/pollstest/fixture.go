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

// Package pollstest provides fixtures and a shared contract suite for
// polls.Store implementations.
package pollstest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/polls"
)

// Day is one calendar day without DST shifts.
const Day = 24 * time.Hour

// Epoch is the instant the suite's fixed clock starts at. Whole seconds
// keep it representable by every backend.
var Epoch = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// CreateQuestion persists a question whose PubDate is days away from the
// clock's current instant (negative for the past, positive for the future).
func CreateQuestion(t testing.TB, w polls.Writer, c clock.Clock, text string, days int) *polls.Question {
	t.Helper()

	q := &polls.Question{
		QuestionText: text,
		PubDate:      c.Now().AddDate(0, 0, days),
	}
	require.NoError(t, w.CreateQuestion(context.Background(), q), "creating question %q", text)
	require.NotZero(t, q.ID, "store must assign an ID")
	return q
}

// IDs extracts question IDs in order.
func IDs(qs []*polls.Question) []int64 {
	ids := make([]int64, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}
