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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	pollserrors "github.com/tombee/polls/pkg/errors"
)

// Exit codes for the polls CLI
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2 // invalid input or configuration
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var cfgErr *pollserrors.ConfigError
	if pollserrors.IsValidation(err) || errors.As(err, &cfgErr) {
		return ExitUsage
	}
	return ExitFailure
}

// HandleExitError prints err to stderr and exits with ExitCode(err).
func HandleExitError(err error) {
	if err == nil {
		return
	}
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// PrintError writes err in the CLI's error format.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, NewStyler(IsTTY(w)).Error("Error: "+err.Error()))
}
