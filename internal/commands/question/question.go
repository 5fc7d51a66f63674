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

// Package question implements the question add and list commands.
package question

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/polls/internal/clock"
	"github.com/tombee/polls/internal/commands/shared"
	"github.com/tombee/polls/internal/polls"
	pollserrors "github.com/tombee/polls/pkg/errors"
)

// NewCommand creates the question command group on the system clock.
func NewCommand() *cobra.Command {
	return newCommand(clock.System{})
}

// newCommand creates the question command group. c computes and filters
// publication dates.
func newCommand(c clock.Clock) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Manage poll questions",
	}

	cmd.AddCommand(newAddCommand(c))
	cmd.AddCommand(newListCommand(c))

	return cmd
}

func newAddCommand(c clock.Clock) *cobra.Command {
	var (
		text string
		days int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a question",
		Long: `Create a question published --days days from now. Negative values
publish in the past; positive values schedule the question for later.`,
		Example: `  polls question add --text "What's new?"
  polls question add --text "Coming soon" --days 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, c, text, days)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Question text (required)")
	cmd.Flags().IntVar(&days, "days", 0, "Publication offset from now in days")

	return cmd
}

func runAdd(cmd *cobra.Command, c clock.Clock, text string, days int) error {
	q := &polls.Question{
		QuestionText: text,
		PubDate:      c.Now().AddDate(0, 0, days),
	}
	if err := polls.Validate(q); err != nil {
		var verr *pollserrors.ValidationError
		if pollserrors.As(err, &verr) && verr.Field == "question_text" {
			verr.Field = "--text"
		}
		return err
	}

	store, _, err := shared.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.CreateQuestion(cmd.Context(), q); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return writeJSON(out, q)
	}
	s := shared.NewStyler(shared.IsTTY(out))
	fmt.Fprintln(out, s.OK(fmt.Sprintf("Created question %d", q.ID)))
	return nil
}

func newListCommand(c clock.Clock) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published questions",
		Long: `List published questions, newest first. Questions published within
the last week are marked. Use --all to include questions scheduled for the
future.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, c, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include questions not yet published")

	return cmd
}

func runList(cmd *cobra.Command, c clock.Clock, all bool) error {
	ctx := cmd.Context()
	store, cfg, err := shared.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	at := c.Now()
	var questions []*polls.Question
	if all {
		lister, ok := store.(polls.Lister)
		if !ok {
			return fmt.Errorf("backend %q does not support listing all questions", cfg.Backend.Type)
		}
		questions, err = lister.ListAll(ctx)
	} else {
		questions, err = store.ListPublished(ctx, at)
	}
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		if questions == nil {
			questions = []*polls.Question{}
		}
		return writeJSON(out, questions)
	}

	return writeTable(out, shared.NewStyler(shared.IsTTY(out)), questions, at)
}

func writeTable(out io.Writer, s shared.Styler, questions []*polls.Question, at time.Time) error {
	if len(questions) == 0 {
		fmt.Fprintln(out, s.Muted("No polls are available."))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, s.Header("ID")+"\t"+s.Header("PUBLISHED")+"\t\t"+s.Header("QUESTION"))
	for _, q := range questions {
		marker := ""
		switch {
		case !q.IsPublished(at):
			marker = s.Muted("scheduled")
		case q.WasPublishedRecently(at):
			marker = s.Recent()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strconv.FormatInt(q.ID, 10),
			q.PubDate.UTC().Format("2006-01-02 15:04"),
			marker,
			q.QuestionText,
		)
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
