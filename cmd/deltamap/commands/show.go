// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
	"github.com/deltamap-dev/deltamap/lib/blockmap"
)

func showCommand() *cli.Command {
	var quiet bool

	return &cli.Command{
		Name:    "show",
		Summary: "Print a decoded blockmap summary",
		Usage:   "deltamap show <blockmap> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flags.BoolVar(&quiet, "quiet", false, "suppress non-fatal warnings")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one <blockmap> argument, got %d", len(args))
			}
			return runShow(args[0], quiet)
		},
	}
}

func runShow(path string, quiet bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening blockmap: %w", err)
	}
	defer file.Close()

	document, err := blockmap.DecodeDocument(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	metadata, err := blockmap.ParseDocument(document, newLogger(quiet))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("version: %s\n", blockmap.DocumentVersion(document))
	if metadata == nil {
		fmt.Println("no file metadata")
		return nil
	}

	fmt.Printf("name:    %s\n", metadata.Name)
	fmt.Printf("offset:  %d\n", metadata.Offset)
	fmt.Printf("blocks:  %d\n", len(metadata.Sizes))
	fmt.Printf("bytes:   %d\n", metadata.TotalSize())
	return nil
}
