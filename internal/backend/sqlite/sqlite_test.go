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

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/polls"
	"github.com/tombee/polls/internal/polls/pollstest"
)

// createTestBackend creates a SQLite backend for testing in a temporary directory.
func createTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "polls.db")
	be, err := New(Config{Path: dbPath, WAL: true})
	require.NoError(t, err, "failed to create backend")
	return be, dbPath
}

func TestSQLiteBackend_Contract(t *testing.T) {
	pollstest.RunStoreSuite(t, func(t *testing.T) polls.Store {
		be, _ := createTestBackend(t)
		return be
	})
}

func TestSQLiteBackend_InMemoryContract(t *testing.T) {
	pollstest.RunStoreSuite(t, func(t *testing.T) polls.Store {
		be, err := New(Config{Path: ":memory:"})
		require.NoError(t, err)
		return be
	})
}

func TestSQLiteBackend_RequiresPath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSQLiteBackend_Persistence(t *testing.T) {
	be, dbPath := createTestBackend(t)
	c := clock.NewFixed(pollstest.Epoch)
	q := pollstest.CreateQuestion(t, be, c, "Survives a restart?", -2)
	require.NoError(t, be.Close())

	reopened, err := New(Config{Path: dbPath, WAL: true})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetPublished(context.Background(), q.ID, c.Now())
	require.NoError(t, err)
	assert.Equal(t, "Survives a restart?", got.QuestionText)
	assert.True(t, got.PubDate.Equal(q.PubDate))
}

func TestSQLiteBackend_SubsecondOrdering(t *testing.T) {
	be, _ := createTestBackend(t)
	defer be.Close()
	ctx := context.Background()

	base := pollstest.Epoch
	later := &polls.Question{QuestionText: "later", PubDate: base.Add(500 * time.Millisecond)}
	earlier := &polls.Question{QuestionText: "earlier", PubDate: base}
	require.NoError(t, be.CreateQuestion(ctx, later))
	require.NoError(t, be.CreateQuestion(ctx, earlier))

	got, err := be.ListPublished(ctx, base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, []int64{later.ID, earlier.ID}, pollstest.IDs(got))

	// Only the whole-second row is visible at the whole second.
	got, err = be.ListPublished(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, []int64{earlier.ID}, pollstest.IDs(got))
}

func TestSQLiteBackend_NormalizesTimezones(t *testing.T) {
	be, _ := createTestBackend(t)
	defer be.Close()
	ctx := context.Background()

	offset := time.FixedZone("UTC-5", -5*60*60)
	q := &polls.Question{QuestionText: "tz", PubDate: pollstest.Epoch.In(offset)}
	require.NoError(t, be.CreateQuestion(ctx, q))

	got, err := be.GetPublished(ctx, q.ID, pollstest.Epoch)
	require.NoError(t, err)
	assert.True(t, got.PubDate.Equal(pollstest.Epoch))
	assert.Equal(t, time.UTC, got.PubDate.Location())
}

func TestFormatTime_LexicalOrder(t *testing.T) {
	a := formatTime(pollstest.Epoch)
	b := formatTime(pollstest.Epoch.Add(time.Nanosecond))
	c := formatTime(pollstest.Epoch.Add(time.Second))
	assert.Less(t, a, b)
	assert.Less(t, b, c)

	parsed, err := parseTime(b)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(pollstest.Epoch.Add(time.Nanosecond)))

	_, err = parseTime("not a time")
	assert.Error(t, err)
}
