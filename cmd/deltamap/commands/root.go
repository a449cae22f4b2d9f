// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the deltamap command tree.
package commands

import (
	"log/slog"
	"os"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
)

// Root returns the top-level deltamap command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "deltamap",
		Summary: "Blockmap verification and differential-download planning",
		Description: "Deltamap verifies binary artifacts against blockmap files,\n" +
			"compares blockmaps across versions, and authors the blockmap and\n" +
			"update-info files a release needs.",
		Subcommands: []*cli.Command{
			verifyCommand(),
			diffCommand(),
			createCommand(),
			showCommand(),
			releaseCommand(),
			cacheCommand(),
		},
	}
}

// newLogger returns the logger used for non-fatal warnings from the
// blockmap document model. Quiet mode drops them entirely.
func newLogger(quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
