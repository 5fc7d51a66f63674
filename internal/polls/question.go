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

// Package polls holds the Question entity and the storage contract the
// views depend on.
//
// # Interface Hierarchy
//
//   - Reader (required by views): ListPublished, GetPublished
//   - Writer (fixtures, CLI): CreateQuestion
//   - Lister (optional): ListAll, for operator tooling
//   - Pinger (optional): Ping, for health checks
//
// Store composes Reader, Writer and io.Closer. Components should accept the
// narrowest interface they need and type-assert for optional capabilities.
package polls

import (
	"strconv"
	"time"

	pollserrors "github.com/tombee/polls/pkg/errors"
)

// RecentWindow is how far back a publication date may lie and still count
// as recently published.
const RecentWindow = 7 * 24 * time.Hour

// Question is a single poll question.
type Question struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"question_text"`
	PubDate      time.Time `json:"pub_date"`
}

// WasPublishedRecently reports whether PubDate falls within the trailing
// RecentWindow ending at now. Both ends of the window are inclusive and a
// future PubDate is never recent.
func (q *Question) WasPublishedRecently(now time.Time) bool {
	if q.PubDate.After(now) {
		return false
	}
	return !q.PubDate.Before(now.Add(-RecentWindow))
}

// IsPublished reports whether the question is visible at the given instant.
func (q *Question) IsPublished(at time.Time) bool {
	return !q.PubDate.After(at)
}

// String returns the question text.
func (q *Question) String() string {
	return q.QuestionText
}

// NotFound builds the error stores return when no visible question has id.
func NotFound(id int64) error {
	return &pollserrors.NotFoundError{Resource: "question", ID: strconv.FormatInt(id, 10)}
}

// IsNotFound reports whether err means the question does not exist or is
// not yet published.
func IsNotFound(err error) bool {
	return pollserrors.IsNotFound(err)
}
