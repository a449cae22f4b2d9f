// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
	"github.com/deltamap-dev/deltamap/lib/config"
	"github.com/deltamap-dev/deltamap/lib/verifycache"
)

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect and manage the verification cache",
		Subcommands: []*cli.Command{
			cacheListCommand(),
			cacheClearCommand(),
		},
	}
}

// openCache resolves the cache directory from the flag or the config
// and opens the store. A cache command without any configured
// directory is an error — there is nothing to operate on.
func openCache(cacheDir, configPath string) (*verifycache.Store, error) {
	if cacheDir == "" {
		configuration, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cacheDir = configuration.CacheDir
	}
	if cacheDir == "" {
		return nil, fmt.Errorf("no cache directory configured (set --cache-dir or cache_dir in the config)")
	}
	return verifycache.NewStore(cacheDir)
}

func cacheListCommand() *cli.Command {
	var configPath string
	var cacheDir string

	return &cli.Command{
		Name:    "list",
		Summary: "List cached verification results",
		Usage:   "deltamap cache list [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file path")
			flags.StringVar(&cacheDir, "cache-dir", "", "verification cache directory (overrides config)")
			return flags
		},
		Run: func(args []string) error {
			store, err := openCache(cacheDir, configPath)
			if err != nil {
				return err
			}

			records, err := store.ScanAll()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("cache is empty")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ARTIFACT\tOUTCOME\tBLOCKS\tVERIFIED")
			for _, record := range records {
				fmt.Fprintf(tw, "%.12s\t%s\t%d\t%s\n",
					verifycache.FormatHash(record.ArtifactHash),
					record.Outcome,
					record.Blocks,
					record.VerifiedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func cacheClearCommand() *cli.Command {
	var configPath string
	var cacheDir string

	return &cli.Command{
		Name:    "clear",
		Summary: "Remove all cached verification results",
		Usage:   "deltamap cache clear [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("clear", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file path")
			flags.StringVar(&cacheDir, "cache-dir", "", "verification cache directory (overrides config)")
			return flags
		},
		Run: func(args []string) error {
			store, err := openCache(cacheDir, configPath)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("cache cleared")
			return nil
		},
	}
}
