// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"math"

	"github.com/spf13/pflag"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
	"github.com/deltamap-dev/deltamap/lib/blockmap"
)

func diffCommand() *cli.Command {
	var quiet bool

	return &cli.Command{
		Name:    "diff",
		Summary: "Compare two blockmaps and report the skip ratio",
		Description: "Diff compares the checksum/size sets of an old and a new\n" +
			"blockmap and reports how many bytes of the new artifact already\n" +
			"exist in the old one — the differential-download savings.",
		Usage: "deltamap diff <old-blockmap> <new-blockmap> [flags]",
		Examples: []cli.Example{
			{Description: "estimate savings between releases", Command: "deltamap diff app-2.0.0.exe.blockmap app-2.1.0.exe.blockmap"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("diff", pflag.ContinueOnError)
			flags.BoolVar(&quiet, "quiet", false, "suppress non-fatal warnings")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <old-blockmap> and <new-blockmap> arguments, got %d", len(args))
			}
			return runDiff(args[0], args[1], quiet)
		},
	}
}

func runDiff(oldPath, newPath string, quiet bool) error {
	logger := newLogger(quiet)

	oldMetadata, err := blockmap.ReadFile(oldPath, logger)
	if err != nil {
		return err
	}
	if oldMetadata == nil {
		return fmt.Errorf("no blockmap metadata in %s", oldPath)
	}

	newMetadata, err := blockmap.ReadFile(newPath, logger)
	if err != nil {
		return err
	}
	if newMetadata == nil {
		return fmt.Errorf("no blockmap metadata in %s", newPath)
	}

	summary, err := blockmap.Compare(oldMetadata, newMetadata)
	if err != nil {
		return err
	}

	ratio := "n/a"
	if !math.IsNaN(summary.Ratio) {
		ratio = fmt.Sprintf("%.2f%%", summary.Ratio*100)
	}
	fmt.Printf("total = %d, skipped = %d, ratio = %s\n", summary.TotalBytes, summary.SkippedBytes, ratio)
	return nil
}
