// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/commands"
)

func main() {
	err := commands.Root().Execute(os.Args[1:])
	if err != nil {
		// Commands that print their own output (like verify) return
		// an ExitError with the desired exit code. Don't print a
		// redundant "error:" line for those.
		if _, handled := err.(interface{ ExitCode() int }); !handled {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	os.Exit(exitStatus(err))
}

// exitStatus maps a command result to process exit status: 0 for
// success, the carried code for handled failures, and 2 for anything
// else (usage mistakes, unreadable files, unexpected errors).
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	return 2
}
