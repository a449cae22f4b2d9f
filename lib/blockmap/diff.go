// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import "fmt"

// DiffSummary reports how much of a new artifact's content already
// exists in an old artifact, byte-for-byte at block granularity.
type DiffSummary struct {
	// TotalBytes is the sum of every block size in the new blockmap.
	TotalBytes int64

	// SkippedBytes is the sum of the new block sizes whose content
	// (checksum and size) already exists in the old blockmap.
	SkippedBytes int64

	// Ratio is SkippedBytes / TotalBytes. When TotalBytes is zero the
	// ratio is NaN — "no data to compare", not 0% or 100%.
	Ratio float64
}

// Compare estimates how many bytes of the new artifact are unchanged
// from the old one. Both metadata records are shape-validated first;
// on failure the first error wins, old before new.
//
// A new block counts as skippable iff its checksum exists in the old
// blockmap and the old block with that checksum has the same size.
// The checksum alone is not sufficient — requiring the size to agree
// guards the accounting against a partial digest collision across
// blocks of different lengths. When the old blockmap maps the same
// checksum to different sizes, the later occurrence in file order
// wins; distinct sizes sharing a 144-bit digest are not expected in
// practice, so plain map construction beats multimap semantics.
func Compare(oldMetadata, newMetadata *FileEntry) (DiffSummary, error) {
	if err := oldMetadata.Validate(); err != nil {
		return DiffSummary{}, fmt.Errorf("old blockmap: %w", err)
	}
	if err := newMetadata.Validate(); err != nil {
		return DiffSummary{}, fmt.Errorf("new blockmap: %w", err)
	}

	oldSizes := make(map[string]int64, len(oldMetadata.Checksums))
	for i, checksum := range oldMetadata.Checksums {
		oldSizes[checksum] = oldMetadata.Sizes[i]
	}

	var summary DiffSummary
	for i, checksum := range newMetadata.Checksums {
		size := newMetadata.Sizes[i]
		summary.TotalBytes += size
		if oldSize, exists := oldSizes[checksum]; exists && oldSize == size {
			summary.SkippedBytes += size
		}
	}

	summary.Ratio = float64(summary.SkippedBytes) / float64(summary.TotalBytes)
	return summary, nil
}
