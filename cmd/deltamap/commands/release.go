// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
	"github.com/deltamap-dev/deltamap/lib/release"
)

func releaseCommand() *cli.Command {
	var outputPath string

	return &cli.Command{
		Name:    "release",
		Summary: "Emit the update-info YAML for a release plan",
		Description: "Release reads a JSONC release plan, computes the SHA-512\n" +
			"digest of every artifact it lists, and writes the YAML update-info\n" +
			"file that update clients poll.",
		Usage: "deltamap release <plan.jsonc> [flags]",
		Examples: []cli.Example{
			{Description: "emit latest.yml from a plan", Command: "deltamap release release.jsonc"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("release", pflag.ContinueOnError)
			flags.StringVarP(&outputPath, "output", "o", "", "update-info output path (default derived from the channel)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one <plan> argument, got %d", len(args))
			}
			return runRelease(args[0], outputPath)
		},
	}
}

func runRelease(planPath, outputPath string) error {
	plan, err := release.ReadPlanFile(planPath)
	if err != nil {
		return err
	}

	info, err := release.Build(plan, time.Now())
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = release.FileName(plan.Channel)
	}
	if err := release.WriteFile(outputPath, info); err != nil {
		return err
	}

	fmt.Printf("wrote %s (version %s, %d files)\n", outputPath, info.Version, len(info.Files))
	return nil
}
