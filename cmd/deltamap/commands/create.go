// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
	"github.com/deltamap-dev/deltamap/lib/blockmap"
	"github.com/deltamap-dev/deltamap/lib/config"
)

func createCommand() *cli.Command {
	var configPath string
	var outputPath string
	var blockSize int64

	return &cli.Command{
		Name:    "create",
		Summary: "Generate a blockmap for an artifact",
		Description: "Create partitions the artifact into fixed-size blocks,\n" +
			"digests each one, and writes the blockmap file alongside the\n" +
			"artifact (or to --output).",
		Usage: "deltamap create <artifact> [flags]",
		Examples: []cli.Example{
			{Description: "write app.exe.blockmap next to the artifact", Command: "deltamap create app.exe"},
			{Description: "use 128 KiB blocks", Command: "deltamap create --block-size 131072 app.exe"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file path")
			flags.StringVarP(&outputPath, "output", "o", "", "blockmap output path (default <artifact>.blockmap)")
			flags.Int64Var(&blockSize, "block-size", 0, "block size in bytes (default from config)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one <artifact> argument, got %d", len(args))
			}
			return runCreate(args[0], outputPath, configPath, blockSize)
		},
	}
}

func runCreate(artifactPath, outputPath, configPath string, blockSize int64) error {
	configuration, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if blockSize == 0 {
		blockSize = configuration.BlockSize
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}

	entry, err := blockmap.Generate(data, filepath.Base(artifactPath), blockSize)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = artifactPath + ".blockmap"
	}
	if err := blockmap.WriteFile(outputPath, entry); err != nil {
		return err
	}

	fmt.Printf("%s: %d blocks (%d bytes), wrote %s\n",
		artifactPath, len(entry.Sizes), entry.TotalSize(), outputPath)
	return nil
}
