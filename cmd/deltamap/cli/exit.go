// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra
// error message. When a command handler returns an ExitError, the
// main function exits with the specified code without printing the
// error string — the command is expected to have already written its
// own output.
//
// This is how "verification failed" propagates: a digest mismatch is
// a valid, fully-reported outcome, not an unexpected error deserving
// an extra "error:" line.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. The main function checks for this
// interface on returned errors to distinguish "handled non-zero
// exit" from "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}
