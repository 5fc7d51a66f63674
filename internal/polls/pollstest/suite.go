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

package pollstest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/polls"
	pollserrors "github.com/tombee/polls/pkg/errors"
)

// RunStoreSuite exercises the polls.Store contract against stores built by
// newStore. Each subtest gets a fresh, empty store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) polls.Store) {
	t.Helper()

	ctx := context.Background()

	setup := func(t *testing.T) (polls.Store, *clock.Fixed) {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s, clock.NewFixed(Epoch)
	}

	t.Run("empty store lists nothing", func(t *testing.T) {
		s, c := setup(t)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("create assigns distinct IDs", func(t *testing.T) {
		s, c := setup(t)

		a := CreateQuestion(t, s, c, "first", -1)
		b := CreateQuestion(t, s, c, "second", -1)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("create rejects blank text", func(t *testing.T) {
		s, c := setup(t)

		err := s.CreateQuestion(ctx, &polls.Question{QuestionText: "", PubDate: c.Now()})
		require.Error(t, err)
		assert.True(t, pollserrors.IsValidation(err))
	})

	t.Run("create rejects pub date beyond year 9999", func(t *testing.T) {
		s, c := setup(t)

		err := s.CreateQuestion(ctx, &polls.Question{
			QuestionText: "Too far",
			PubDate:      time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.Error(t, err)
		assert.True(t, pollserrors.IsValidation(err))

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("create rejects overlong text", func(t *testing.T) {
		s, c := setup(t)

		err := s.CreateQuestion(ctx, &polls.Question{
			QuestionText: strings.Repeat("q", polls.MaxQuestionTextLength+1),
			PubDate:      c.Now(),
		})
		require.Error(t, err)
		assert.True(t, pollserrors.IsValidation(err))
	})

	t.Run("far future question stays hidden", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Far future.", 200000)
		require.True(t, q.PubDate.After(c.Now().AddDate(500, 0, 0)), "pub_date %v should be centuries ahead", q.PubDate)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = s.GetPublished(ctx, q.ID, c.Now())
		assert.True(t, polls.IsNotFound(err))
	})

	t.Run("future questions are hidden from the list", func(t *testing.T) {
		s, c := setup(t)
		CreateQuestion(t, s, c, "Future question.", 30)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("past question is listed", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Past question.", -10)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, q.ID, got[0].ID)
		assert.Equal(t, "Past question.", got[0].QuestionText)
		assert.True(t, q.PubDate.Equal(got[0].PubDate), "pub_date must round-trip: %v != %v", q.PubDate, got[0].PubDate)
	})

	t.Run("question published exactly now is listed", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Right now.", 0)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Equal(t, []int64{q.ID}, IDs(got))
	})

	t.Run("mixed questions listed newest first", func(t *testing.T) {
		s, c := setup(t)
		old := CreateQuestion(t, s, c, "Past question 1.", -30)
		recent := CreateQuestion(t, s, c, "Past question 2.", -5)
		CreateQuestion(t, s, c, "Future question.", 30)
		middle := CreateQuestion(t, s, c, "Past question 3.", -10)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Equal(t, []int64{recent.ID, middle.ID, old.ID}, IDs(got))
	})

	t.Run("equal pub dates ordered by descending ID", func(t *testing.T) {
		s, c := setup(t)
		a := CreateQuestion(t, s, c, "a", -2)
		b := CreateQuestion(t, s, c, "b", -2)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Equal(t, []int64{b.ID, a.ID}, IDs(got))
	})

	t.Run("list follows the instant it is given", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Soon.", 3)

		got, err := s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Empty(t, got)

		c.Advance(3 * Day)
		got, err = s.ListPublished(ctx, c.Now())
		require.NoError(t, err)
		assert.Equal(t, []int64{q.ID}, IDs(got))
	})

	t.Run("get returns published question", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Past Question.", -30)

		got, err := s.GetPublished(ctx, q.ID, c.Now())
		require.NoError(t, err)
		assert.Equal(t, q.ID, got.ID)
		assert.Equal(t, "Past Question.", got.QuestionText)
	})

	t.Run("get hides future question", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Future question.", 30)

		_, err := s.GetPublished(ctx, q.ID, c.Now())
		require.Error(t, err)
		assert.True(t, polls.IsNotFound(err), "expected not found, got %v", err)
	})

	t.Run("get unknown id is not found", func(t *testing.T) {
		s, c := setup(t)
		q := CreateQuestion(t, s, c, "Past question.", -1)

		_, err := s.GetPublished(ctx, q.ID+1000, c.Now())
		require.Error(t, err)
		assert.True(t, polls.IsNotFound(err), "expected not found, got %v", err)
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		s, c := setup(t)
		CreateQuestion(t, s, c, "one", -3)
		q := CreateQuestion(t, s, c, "two", -1)
		CreateQuestion(t, s, c, "three", 2)

		now := c.Now()
		first, err := s.ListPublished(ctx, now)
		require.NoError(t, err)
		second, err := s.ListPublished(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, IDs(first), IDs(second))

		g1, err := s.GetPublished(ctx, q.ID, now)
		require.NoError(t, err)
		g2, err := s.GetPublished(ctx, q.ID, now)
		require.NoError(t, err)
		assert.Equal(t, g1.QuestionText, g2.QuestionText)
		assert.True(t, g1.PubDate.Equal(g2.PubDate))
	})

	t.Run("list all includes future questions", func(t *testing.T) {
		s, c := setup(t)
		lister, ok := s.(polls.Lister)
		if !ok {
			t.Skip("store does not implement polls.Lister")
		}
		past := CreateQuestion(t, s, c, "past", -1)
		future := CreateQuestion(t, s, c, "future", 1)

		got, err := lister.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{future.ID, past.ID}, IDs(got))
	})

	t.Run("ping", func(t *testing.T) {
		s, _ := setup(t)
		pinger, ok := s.(polls.Pinger)
		if !ok {
			t.Skip("store does not implement polls.Pinger")
		}
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		assert.NoError(t, pinger.Ping(ctx))
	})
}
