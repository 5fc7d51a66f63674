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

// Package cli assembles the polls command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tombee/polls/internal/commands/question"
	"github.com/tombee/polls/internal/commands/serve"
	"github.com/tombee/polls/internal/commands/shared"
	"github.com/tombee/polls/internal/commands/version"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command with every subcommand
// attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "polls",
		Short: "Polls - publish questions and serve them over HTTP",
		Long: `Polls serves a list of published questions and a page per question.
Questions with a publication date in the future stay hidden until that
date arrives.

Run 'polls question add --text "..."' to create a question.
Run 'polls serve' to start the web server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	json, config := shared.RegisterFlagPointers()
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (default: ~/.config/polls/config.yaml)")

	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(question.NewCommand())
	cmd.AddCommand(version.NewCommand())

	return cmd
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
