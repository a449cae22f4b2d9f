// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package verifycache persists verification results so repeated
// checks of an unchanged artifact/blockmap pair do not re-hash
// gigabytes. Records are keyed by the artifact's BLAKE3 content hash
// and stored as sharded CBOR files on disk.
//
// A cached result is only trusted when both content hashes match:
// the artifact hash selects the record, and the stored blockmap hash
// must equal the current blockmap file's hash. Either file changing
// invalidates the entry naturally — the lookup simply misses.
//
// The store is safe for concurrent reads. Writes must be serialized
// by the caller (the CLI performs at most one write per invocation).
package verifycache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 content hash identifying an artifact or
// blockmap file by its bytes.
type Hash [32]byte

// HashBytes computes the BLAKE3 content hash of data.
func HashBytes(data []byte) Hash {
	return blake3.Sum256(data)
}

// FormatHash returns the hex-encoded string form of a hash, used in
// file names and log output.
func FormatHash(hash Hash) string {
	return hex.EncodeToString(hash[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing content hash: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("content hash is %d bytes, want 32", len(decoded))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// Record is one cached verification result.
type Record struct {
	// ArtifactHash is the BLAKE3 hash of the verified artifact's
	// full contents. It is also the record's key on disk.
	ArtifactHash Hash `json:"artifact_hash"`

	// BlockmapHash is the BLAKE3 hash of the blockmap file the
	// artifact was verified against (the compressed bytes as stored
	// on disk).
	BlockmapHash Hash `json:"blockmap_hash"`

	// Outcome is the verification outcome kind ("ok", "invalid",
	// "failed").
	Outcome string `json:"outcome"`

	// Blocks is the declared block count for successful outcomes.
	Blocks int `json:"blocks,omitempty"`

	// Reason carries the failure description for unsuccessful
	// outcomes.
	Reason string `json:"reason,omitempty"`

	// VerifiedAt is when the verification ran.
	VerifiedAt time.Time `json:"verified_at"`
}

// cborEncMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the
// same logical record always produces identical bytes.
var cborEncMode cbor.EncMode

// cborDecMode accepts standard CBOR.
var cborDecMode cbor.DecMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("verifycache: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("verifycache: CBOR decoder initialization failed: " + err.Error())
	}
}

// Store persists verification records as sharded CBOR files:
//
//	<root>/<hex[:2]>/<hex[2:4]>/<hash>.cbor
//
// Two shard levels keep directory sizes manageable without any
// index file.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory, creating it
// if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Write atomically persists a record. The file is written to a
// temporary location first, then renamed to the final sharded path,
// so readers never see a partially-written record.
func (s *Store) Write(record *Record) error {
	data, err := cborEncMode.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding verification record: %w", err)
	}

	finalPath := s.path(record.ArtifactHash)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("creating cache shard directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.root, "record-*.cbor")
	if err != nil {
		return fmt.Errorf("creating temp record file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing verification record: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp record file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming record to %s: %w", finalPath, err)
	}

	success = true
	return nil
}

// Read loads the record for the given artifact hash. Returns an error
// wrapping os.ErrNotExist when no record has been stored.
func (s *Store) Read(artifact Hash) (*Record, error) {
	data, err := os.ReadFile(s.path(artifact))
	if err != nil {
		return nil, fmt.Errorf("reading record for %s: %w", FormatHash(artifact), err)
	}

	var record Record
	if err := cborDecMode.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record for %s: %w", FormatHash(artifact), err)
	}
	return &record, nil
}

// Lookup returns the cached record for an artifact only when it was
// produced against the same blockmap file. A missing record, a
// blockmap mismatch, or an unreadable record all report a plain miss.
func (s *Store) Lookup(artifact, blockmap Hash) (*Record, bool) {
	record, err := s.Read(artifact)
	if err != nil {
		return nil, false
	}
	if record.BlockmapHash != blockmap {
		return nil, false
	}
	return record, true
}

// Delete removes the record for the given artifact hash. Returns nil
// if the record was removed or did not exist.
func (s *Store) Delete(artifact Hash) error {
	if err := os.Remove(s.path(artifact)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing record for %s: %w", FormatHash(artifact), err)
	}
	return nil
}

// ScanAll walks the cache directory and returns every record. Files
// that are not hash-named CBOR records (e.g., temp files left by a
// crash) are skipped.
func (s *Store) ScanAll() ([]Record, error) {
	var results []Record

	err := filepath.WalkDir(s.root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".cbor") {
			return nil
		}
		if _, err := ParseHash(strings.TrimSuffix(name, ".cbor")); err != nil {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading record %s: %w", path, err)
		}

		var record Record
		if err := cborDecMode.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("decoding record %s: %w", path, err)
		}

		results = append(results, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning cache directory: %w", err)
	}

	return results, nil
}

// Clear removes every record from the store, leaving the root
// directory in place.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}

// path returns the sharded filesystem path for a record.
func (s *Store) path(artifact Hash) string {
	hex := FormatHash(artifact)
	return filepath.Join(s.root, hex[:2], hex[2:4], hex+".cbor")
}
