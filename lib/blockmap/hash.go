// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import (
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the block digest length in bytes. Blockmap checksums
// are 144-bit BLAKE2b digests — a protocol constant. Changing it
// invalidates every existing blockmap file.
const DigestSize = 18

// Checksum computes the block digest of data[offset : offset+length]
// and returns it in the comparable string form stored in blockmap
// files: standard base64 (with padding) of the raw un-keyed BLAKE2b
// digest. A fresh digest state is used per call, so identical input
// bytes always produce identical output regardless of prior calls.
//
// The range must lie within data; the caller is responsible for
// bounds (the verifier's truncation guard handles out-of-range
// metadata before computing any digest).
func Checksum(data []byte, offset, length int64) string {
	// New only fails for an invalid digest size or an oversized key;
	// both are impossible with our fixed constants.
	hasher, err := blake2b.New(DigestSize, nil)
	if err != nil {
		panic("blockmap: BLAKE2b initialization failed: " + err.Error())
	}
	hasher.Write(data[offset : offset+length])
	return base64.StdEncoding.EncodeToString(hasher.Sum(nil))
}
