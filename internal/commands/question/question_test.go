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

package question

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/commands/shared"
	"github.com/tombee/polls/internal/polls"
	"github.com/tombee/polls/internal/polls/pollstest"
	pollserrors "github.com/tombee/polls/pkg/errors"
)

// setup points the commands at a fresh SQLite file and freezes the clock.
func setup(t *testing.T) *clock.Fixed {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POLLS_BACKEND", "sqlite")
	t.Setenv("POLLS_SQLITE_PATH", filepath.Join(t.TempDir(), "polls.db"))
	t.Setenv("NO_COLOR", "1")
	shared.SetConfigPathForTest("")

	return clock.NewFixed(pollstest.Epoch)
}

// execute runs the question command group on c with a --json root flag.
func execute(t *testing.T, c clock.Clock, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "polls", SilenceUsage: true, SilenceErrors: true}
	jsonPtr, _ := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVar(jsonPtr, "json", false, "JSON output")
	t.Cleanup(func() { *jsonPtr = false })
	root.AddCommand(newCommand(c))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"question"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAdd(t *testing.T) {
	c := setup(t)

	out, err := execute(t, c, "add", "--text", "What's new?")
	require.NoError(t, err)
	assert.Equal(t, shared.SymbolOK+" Created question 1\n", out)

	out, err = execute(t, c, "add", "--text", "Second", "--days", "-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Created question 2")
}

func TestAdd_JSON(t *testing.T) {
	c := setup(t)

	out, err := execute(t, c, "add", "--json", "--text", "Future", "--days", "3")
	require.NoError(t, err)

	var q polls.Question
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, int64(1), q.ID)
	assert.Equal(t, "Future", q.QuestionText)
	assert.True(t, q.PubDate.Equal(pollstest.Epoch.AddDate(0, 0, 3)))
}

func TestAdd_EmptyText(t *testing.T) {
	c := setup(t)

	for _, text := range []string{"", "   "} {
		_, err := execute(t, c, "add", "--text", text)
		require.Error(t, err)
		assert.True(t, pollserrors.IsValidation(err))
		assert.Contains(t, err.Error(), "--text")
		assert.Equal(t, shared.ExitUsage, shared.ExitCode(err))
	}
}

func TestList(t *testing.T) {
	c := setup(t)

	out, err := execute(t, c, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No polls are available.")

	for _, args := range [][]string{
		{"--text", "Old", "--days", "-30"},
		{"--text", "Recent", "--days", "-1"},
		{"--text", "Scheduled", "--days", "5"},
	} {
		_, err := execute(t, c, append([]string{"add"}, args...)...)
		require.NoError(t, err)
	}

	out, err = execute(t, c, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[0], "QUESTION")
	assert.Contains(t, lines[1], "Recent")
	assert.Contains(t, lines[1], shared.SymbolNew)
	assert.Contains(t, lines[2], "Old")
	assert.NotContains(t, lines[2], shared.SymbolNew)
	assert.NotContains(t, out, "Scheduled")

	out, err = execute(t, c, "list", "--all")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)
	assert.Contains(t, lines[1], "Scheduled")
	assert.Contains(t, lines[1], "scheduled")
}

func TestList_JSON(t *testing.T) {
	c := setup(t)

	out, err := execute(t, c, "list", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = execute(t, c, "add", "--text", "Soon", "--days", "1")
	require.NoError(t, err)

	out, err = execute(t, c, "list", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	c.Advance(pollstest.Day)
	out, err = execute(t, c, "list", "--json")
	require.NoError(t, err)
	var qs []*polls.Question
	require.NoError(t, json.Unmarshal([]byte(out), &qs))
	require.Len(t, qs, 1)
	assert.Equal(t, "Soon", qs[0].QuestionText)
}

func TestAdd_FarFuture(t *testing.T) {
	c := setup(t)

	out, err := execute(t, c, "add", "--json", "--text", "Far future", "--days", "200000")
	require.NoError(t, err)
	var q polls.Question
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.True(t, q.PubDate.Equal(pollstest.Epoch.AddDate(0, 0, 200000)), "pub_date %v", q.PubDate)

	out, err = execute(t, c, "list", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	out, err = execute(t, c, "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Far future")
	assert.Contains(t, out, "scheduled")
}
