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

package polls

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	pollserrors "github.com/tombee/polls/pkg/errors"
)

// Reader is the read side used by the index and detail views.
type Reader interface {
	// ListPublished returns every question with PubDate <= at, newest
	// first. Equal PubDates are ordered by descending ID.
	ListPublished(ctx context.Context, at time.Time) ([]*Question, error)

	// GetPublished returns the question with the given id if its
	// PubDate <= at. Otherwise it returns an error for which IsNotFound
	// is true.
	GetPublished(ctx context.Context, id int64, at time.Time) (*Question, error)
}

// Writer creates questions.
type Writer interface {
	// CreateQuestion persists q and assigns q.ID.
	CreateQuestion(ctx context.Context, q *Question) error
}

// Lister is an optional interface for listing questions regardless of
// publication date.
//
//	if lister, ok := store.(Lister); ok {
//	    all, err := lister.ListAll(ctx)
//	}
type Lister interface {
	// ListAll returns every question, newest PubDate first.
	ListAll(ctx context.Context) ([]*Question, error)
}

// Pinger is an optional interface for checking backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full storage contract implemented by every backend.
type Store interface {
	Reader
	Writer
	io.Closer
}

// MaxQuestionTextLength is the longest question text, in characters, that
// every backend stores.
const MaxQuestionTextLength = 200

// PubDate years outside this range cannot be stored as fixed-width
// timestamps.
const (
	minPubYear = 1
	maxPubYear = 9999
)

// Validate checks a question before it is persisted.
func Validate(q *Question) error {
	if q == nil {
		return &pollserrors.ValidationError{Message: "question is nil"}
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return &pollserrors.ValidationError{Field: "question_text", Message: "must not be empty"}
	}
	if n := utf8.RuneCountInString(q.QuestionText); n > MaxQuestionTextLength {
		return &pollserrors.ValidationError{
			Field:   "question_text",
			Message: fmt.Sprintf("must be at most %d characters, got %d", MaxQuestionTextLength, n),
		}
	}
	if q.PubDate.IsZero() {
		return &pollserrors.ValidationError{Field: "pub_date", Message: "must be set"}
	}
	if y := q.PubDate.UTC().Year(); y < minPubYear || y > maxPubYear {
		return &pollserrors.ValidationError{
			Field:   "pub_date",
			Message: fmt.Sprintf("year must be between %d and %d, got %d", minPubYear, maxPubYear, y),
		}
	}
	return nil
}

// SortNewestFirst orders questions by PubDate descending, then ID
// descending. Backends without ORDER BY support use it to honour the
// Reader ordering contract.
func SortNewestFirst(qs []*Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if !qs[i].PubDate.Equal(qs[j].PubDate) {
			return qs[i].PubDate.After(qs[j].PubDate)
		}
		return qs[i].ID > qs[j].ID
	})
}
