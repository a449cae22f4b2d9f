// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/gzip"
)

// DefaultBlockSize is the block length used when generating a
// blockmap with a fixed layout. 64 KiB keeps the blockmap small
// relative to the artifact while leaving enough granularity for
// differential downloads to skip meaningful ranges.
const DefaultBlockSize = 64 * 1024

// wireDocument is the persisted top-level JSON object. Key names and
// value shapes are protocol constants shared with existing blockmap
// consumers — do not change them.
type wireDocument struct {
	Version string      `json:"version"`
	Files   []wireEntry `json:"files"`
}

// wireEntry is one persisted file entry. A zero offset is omitted,
// matching the blockmaps other producers emit.
type wireEntry struct {
	Name      string   `json:"name"`
	Offset    int64    `json:"offset,omitempty"`
	Checksums []string `json:"checksums"`
	Sizes     []int64  `json:"sizes"`
}

// DecodeDocument decompresses and parses a blockmap stream into a
// generic key/value document. Parsing stays generic here — the typed
// extraction (and its warnings and field errors) is ParseDocument's
// job.
func DecodeDocument(r io.Reader) (map[string]any, error) {
	uncompressor, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer uncompressor.Close()

	data, err := io.ReadAll(uncompressor)
	if err != nil {
		return nil, fmt.Errorf("decompressing blockmap: %w", err)
	}

	// UseNumber keeps integer fields exact: plain Unmarshal decodes
	// every number as float64, which silently rounds sizes past 2^53.
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var document map[string]any
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("parsing blockmap JSON: %w", err)
	}
	return document, nil
}

// ReadFile loads a blockmap file and extracts its first file entry.
// Returns (nil, nil) when the file decodes but carries no metadata.
// Warnings (unexpected version, extra file entries) go to logger.
func ReadFile(path string, logger *slog.Logger) (*FileEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening blockmap %s: %w", path, err)
	}
	defer file.Close()

	document, err := DecodeDocument(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	entry, err := ParseDocument(document, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entry, nil
}

// EncodeDocument writes a file entry to w in the persisted blockmap
// format: gzip-compressed UTF-8 JSON with the fixed key layout.
func EncodeDocument(w io.Writer, entry *FileEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	document := wireDocument{
		Version: FormatVersion,
		Files: []wireEntry{{
			Name:      entry.Name,
			Offset:    entry.Offset,
			Checksums: entry.Checksums,
			Sizes:     entry.Sizes,
		}},
	}

	data, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("encoding blockmap JSON: %w", err)
	}

	compressor, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("creating gzip stream: %w", err)
	}
	if _, err := compressor.Write(data); err != nil {
		return fmt.Errorf("compressing blockmap: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("finishing gzip stream: %w", err)
	}
	return nil
}

// WriteFile persists a file entry as a blockmap file at path.
func WriteFile(path string, entry *FileEntry) error {
	var buffer bytes.Buffer
	if err := EncodeDocument(&buffer, entry); err != nil {
		return fmt.Errorf("encoding blockmap for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing blockmap %s: %w", path, err)
	}
	return nil
}

// Generate builds block metadata for an artifact using a fixed block
// layout: consecutive blocks of blockSize bytes, with a shorter final
// block covering the remainder. Content-defined layouts are produced
// by other tools; this producer exists so the format can be authored
// and round-tripped locally.
func Generate(data []byte, name string, blockSize int64) (*FileEntry, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size %d is invalid (must be positive)", blockSize)
	}

	total := int64(len(data))
	blockCount := int((total + blockSize - 1) / blockSize)

	entry := &FileEntry{
		Name:      name,
		Checksums: make([]string, 0, blockCount),
		Sizes:     make([]int64, 0, blockCount),
	}

	for offset := int64(0); offset < total; offset += blockSize {
		size := min(blockSize, total-offset)
		entry.Checksums = append(entry.Checksums, Checksum(data, offset, size))
		entry.Sizes = append(entry.Sizes, size)
	}

	return entry, nil
}
