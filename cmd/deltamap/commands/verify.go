// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/deltamap-dev/deltamap/cmd/deltamap/cli"
	"github.com/deltamap-dev/deltamap/lib/blockmap"
	"github.com/deltamap-dev/deltamap/lib/config"
	"github.com/deltamap-dev/deltamap/lib/verifycache"
)

func verifyCommand() *cli.Command {
	var configPath string
	var cacheDir string
	var noCache bool
	var quiet bool

	return &cli.Command{
		Name:    "verify",
		Summary: "Verify an artifact against its blockmap",
		Description: "Verify recomputes every block digest of the artifact and\n" +
			"compares it to the checksums stored in the blockmap. The first\n" +
			"mismatch stops verification.",
		Usage: "deltamap verify <artifact> <blockmap> [flags]",
		Examples: []cli.Example{
			{Description: "verify an installer", Command: "deltamap verify app-2.1.0.exe app-2.1.0.exe.blockmap"},
			{Description: "verify with result caching", Command: "deltamap verify --cache-dir ~/.cache/deltamap app.exe app.exe.blockmap"},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "config file path")
			flags.StringVar(&cacheDir, "cache-dir", "", "verification cache directory (overrides config)")
			flags.BoolVar(&noCache, "no-cache", false, "bypass the verification cache")
			flags.BoolVar(&quiet, "quiet", false, "suppress non-fatal warnings")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected <artifact> and <blockmap> arguments, got %d", len(args))
			}
			return runVerify(args[0], args[1], configPath, cacheDir, quiet, noCache)
		},
	}
}

func runVerify(artifactPath, blockmapPath, configPath, cacheDir string, quiet, noCache bool) error {
	configuration, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(quiet || !configuration.Warnings)

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}

	blockmapRaw, err := os.ReadFile(blockmapPath)
	if err != nil {
		return fmt.Errorf("reading blockmap: %w", err)
	}

	document, err := blockmap.DecodeDocument(bytes.NewReader(blockmapRaw))
	if err != nil {
		return fmt.Errorf("%s: %w", blockmapPath, err)
	}

	metadata, err := blockmap.ParseDocument(document, logger)
	if err != nil {
		// Malformed metadata is a classified outcome, not a crash:
		// report it and exit like any other failed verification.
		fmt.Fprintf(os.Stderr, "%s: invalid blockmap metadata: %v\n", blockmapPath, err)
		return &cli.ExitError{Code: 1}
	}
	if metadata == nil {
		fmt.Printf("%s: no blockmap metadata, nothing to verify\n", blockmapPath)
		return nil
	}

	if cacheDir == "" {
		cacheDir = configuration.CacheDir
	}
	if noCache {
		cacheDir = ""
	}

	var store *verifycache.Store
	var artifactHash, blockmapHash verifycache.Hash
	if cacheDir != "" {
		store, err = verifycache.NewStore(cacheDir)
		if err != nil {
			return err
		}
		artifactHash = verifycache.HashBytes(data)
		blockmapHash = verifycache.HashBytes(blockmapRaw)

		if record, hit := store.Lookup(artifactHash, blockmapHash); hit {
			return reportOutcome(artifactPath, recordOutcome(record), true)
		}
	}

	outcome := blockmap.Verify(data, metadata)

	if store != nil {
		record := &verifycache.Record{
			ArtifactHash: artifactHash,
			BlockmapHash: blockmapHash,
			Outcome:      outcome.Kind.String(),
			Blocks:       outcome.Blocks,
			Reason:       outcome.Reason,
			VerifiedAt:   time.Now().UTC(),
		}
		if err := store.Write(record); err != nil {
			// A cache write failure never fails the verification.
			logger.Warn("writing verification cache", "error", err)
		}
	}

	return reportOutcome(artifactPath, outcome, false)
}

// recordOutcome rebuilds a verification outcome from a cached record.
func recordOutcome(record *verifycache.Record) blockmap.Outcome {
	switch record.Outcome {
	case blockmap.OutcomeInvalid.String():
		return blockmap.Outcome{Kind: blockmap.OutcomeInvalid, Reason: record.Reason}
	case blockmap.OutcomeFailed.String():
		return blockmap.Outcome{Kind: blockmap.OutcomeFailed, Reason: record.Reason}
	default:
		return blockmap.Outcome{Kind: blockmap.OutcomeOk, Blocks: record.Blocks}
	}
}

// reportOutcome renders a verification outcome as a one-line status
// and converts it to exit status: ok is success, everything else
// exits 1 after printing its own message.
func reportOutcome(artifactPath string, outcome blockmap.Outcome, cached bool) error {
	suffix := ""
	if cached {
		suffix = " (cached)"
	}

	switch outcome.Kind {
	case blockmap.OutcomeOk:
		fmt.Printf("%s: verified %d blocks%s\n", artifactPath, outcome.Blocks, suffix)
		return nil
	case blockmap.OutcomeInvalid:
		fmt.Fprintf(os.Stderr, "%s: invalid blockmap metadata: %s%s\n", artifactPath, outcome.Reason, suffix)
		return &cli.ExitError{Code: 1}
	default:
		fmt.Fprintf(os.Stderr, "%s: verification failed: %s%s\n", artifactPath, outcome.Reason, suffix)
		return &cli.ExitError{Code: 1}
	}
}
