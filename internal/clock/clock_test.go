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

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_NowIsUTC(t *testing.T) {
	before := time.Now()
	now := System{}.Now()
	after := time.Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.False(t, now.Before(before.Truncate(time.Second)))
	assert.False(t, now.After(after.Add(time.Second)))
}

func TestFixed(t *testing.T) {
	start := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	c := NewFixed(start)

	assert.True(t, c.Now().Equal(start))
	assert.True(t, c.Now().Equal(start), "Now must not move on its own")

	c.Advance(90 * time.Minute)
	assert.True(t, c.Now().Equal(start.Add(90*time.Minute)))

	c.Advance(-2 * time.Hour)
	assert.True(t, c.Now().Equal(start.Add(-30*time.Minute)))

	other := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(other)
	assert.True(t, c.Now().Equal(other))
}

func TestFixed_SatisfiesClock(t *testing.T) {
	var _ Clock = NewFixed(time.Time{})
	var _ Clock = System{}
}
