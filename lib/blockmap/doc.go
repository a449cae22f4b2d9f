// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package blockmap implements the blockmap data model and the
// verification and comparison algorithms built on it — the core of
// Deltamap's differential-download tooling.
//
// A blockmap describes how a large binary artifact (an installer or
// executable) is partitioned into contiguous checksummed byte ranges.
// The package is organized in layers, each usable independently:
//
//   - Document model: extracts typed block metadata from a generic
//     decoded JSON document. Numeric fields are coerced losslessly
//     from whatever representation the decoder produced; every
//     access is fallible and names the offending field on failure.
//
//   - Checksum engine: BLAKE2b with an 18-byte (144-bit) digest,
//     un-keyed, base64-encoded with padding. This is the comparable
//     string form stored in blockmap files.
//
//   - Offset reconstruction: derives each block's byte range from a
//     starting offset and the ordered block sizes via a prefix-sum
//     scan. Blocks are contiguous and non-overlapping by
//     construction.
//
//   - Verifier: walks blocks in declared order, recomputes digests,
//     and classifies the result (verified, invalid metadata, or
//     digest mismatch). Fail-fast: the first mismatch aborts the
//     remaining blocks.
//
//   - Differencer: compares the checksum/size sets of two blockmaps
//     and reports how many bytes of the new artifact already exist
//     in the old one — the "skip ratio" that drives differential
//     download decisions.
//
// The package also owns the persisted format: gzip-compressed UTF-8
// JSON with a fixed key layout (see [WriteFile]). The format is a
// protocol constant — byte-range semantics, digest algorithm, and
// key names must be preserved for interoperability with existing
// blockmap consumers.
//
// All operations are pure computations over in-memory buffers. No
// function retains state across calls, so callers may verify or
// compare multiple artifacts in parallel without synchronization.
package blockmap
