// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import "fmt"

// OutcomeKind classifies a verification result.
type OutcomeKind int

const (
	// OutcomeOk means every block digest matched.
	OutcomeOk OutcomeKind = iota

	// OutcomeInvalid means the metadata was structurally malformed
	// and no hashing was performed.
	OutcomeInvalid

	// OutcomeFailed means hashing ran and a block digest mismatched.
	OutcomeFailed
)

// String returns the human-readable name of an outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOk:
		return "ok"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Outcome is the classified result of one verification call: a
// tagged variant with per-kind data. Outcomes are values — they are
// returned to the caller, never thrown, and the CLI boundary alone
// turns them into user-facing text and exit status.
type Outcome struct {
	// Kind tags the variant.
	Kind OutcomeKind

	// Blocks is the number of blocks the metadata declares. Set for
	// OutcomeOk only. Note this is the declared count, not the count
	// actually hashed: blocks excluded by the truncation guard still
	// contribute (see Verify).
	Blocks int

	// Reason describes what went wrong. Set for OutcomeInvalid and
	// OutcomeFailed.
	Reason string
}

// Verify checks an artifact's contents against its block metadata
// and classifies the result.
//
// The metadata shape is validated before any hashing: missing or
// length-mismatched checksum/size arrays, a non-positive block size,
// or a negative offset yield OutcomeInvalid with no digest work
// wasted. The size and offset checks also keep every computed block
// range well-formed, so the slicing below cannot go out of bounds. Blocks are then walked in declared file order,
// each digest recomputed and compared by exact string equality. The
// first mismatch stops the walk and yields OutcomeFailed carrying the
// block's offset, size, and expected checksum.
//
// Truncation guard: a block whose end offset reaches or exceeds
// len(data) stops the walk, and the blocks before it stand as the
// complete successful result. The guard deliberately uses >= — a
// block ending exactly at the buffer end is also excluded. This
// matches the behavior of existing blockmap consumers and is
// preserved for compatibility, surprising as the boundary case looks.
func Verify(data []byte, metadata *FileEntry) Outcome {
	if err := metadata.Validate(); err != nil {
		return Outcome{Kind: OutcomeInvalid, Reason: err.Error()}
	}

	ranges := BlockRanges(metadata.Offset, metadata.Sizes)
	for i, blockRange := range ranges {
		if blockRange.End() >= int64(len(data)) {
			break
		}
		computed := Checksum(data, blockRange.Offset, blockRange.Size)
		if computed != metadata.Checksums[i] {
			return Outcome{
				Kind: OutcomeFailed,
				Reason: fmt.Sprintf("block at offset %d (%d bytes) does not match expected checksum %s",
					blockRange.Offset, blockRange.Size, metadata.Checksums[i]),
			}
		}
	}

	return Outcome{Kind: OutcomeOk, Blocks: len(metadata.Checksums)}
}
