// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

// BlockRange is one contiguous byte range of an artifact: a derived
// view, never stored. Range i of a file entry starts where range i-1
// ends.
type BlockRange struct {
	// Offset is the byte position of the range's first byte.
	Offset int64

	// Size is the range length in bytes.
	Size int64
}

// End returns the offset one past the range's last byte.
func (r BlockRange) End() int64 {
	return r.Offset + r.Size
}

// BlockRanges derives the byte range of every block from a starting
// offset and the ordered block sizes. A running cumulative sum seeded
// at startOffset pairs each size with the sum of all sizes before it,
// so the returned ranges are contiguous and non-overlapping by
// construction. The result has one entry per size, in the same order.
func BlockRanges(startOffset int64, sizes []int64) []BlockRange {
	ranges := make([]BlockRange, len(sizes))
	offset := startOffset
	for i, size := range sizes {
		ranges[i] = BlockRange{Offset: offset, Size: size}
		offset += size
	}
	return ranges
}
