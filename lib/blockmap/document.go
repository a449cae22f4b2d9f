// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// FormatVersion is the blockmap format version this package produces
// and expects. Documents carrying a different version are processed
// anyway on the assumption that the block layout has not changed; the
// mismatch is only warned about.
const FormatVersion = "2"

// FileEntry is one logical file's block layout: the ordered block
// digests and the matching ordered block sizes, plus the byte offset
// of the first block. Checksums[i] and Sizes[i] describe the i-th
// block in file order. Entries are read-only after construction.
type FileEntry struct {
	// Name is the file name as recorded in the blockmap. Display
	// only — it does not participate in verification.
	Name string

	// Offset is the byte position of the first block. Zero for most
	// blockmaps (the persisted format omits a zero offset).
	Offset int64

	// Checksums holds the base64 block digests in file order.
	Checksums []string

	// Sizes holds the block lengths in bytes, parallel to Checksums.
	Sizes []int64
}

// Validate checks the structural invariants every algorithm in this
// package depends on: checksums and sizes must both be present and
// describe the same number of blocks, every size must be positive,
// and the offset must be non-negative. The returned error names the
// offending field.
func (f *FileEntry) Validate() error {
	if f.Checksums == nil {
		return fmt.Errorf("blockmap metadata has no checksums")
	}
	if f.Sizes == nil {
		return fmt.Errorf("blockmap metadata has no sizes")
	}
	if len(f.Checksums) != len(f.Sizes) {
		return fmt.Errorf("blockmap metadata has %d checksums but %d sizes",
			len(f.Checksums), len(f.Sizes))
	}
	if f.Offset < 0 {
		return fmt.Errorf("blockmap metadata has negative offset %d", f.Offset)
	}
	for i, size := range f.Sizes {
		if size <= 0 {
			return fmt.Errorf("blockmap metadata has non-positive size %d for block %d", size, i)
		}
	}
	return nil
}

// TotalSize returns the sum of all block sizes.
func (f *FileEntry) TotalSize() int64 {
	var total int64
	for _, size := range f.Sizes {
		total += size
	}
	return total
}

// DocumentVersion extracts the version string from a decoded blockmap
// document. Returns "" when the field is absent or not a string.
func DocumentVersion(document map[string]any) string {
	version, _ := stringValue(document["version"])
	return version
}

// ParseDocument extracts the first file entry from a decoded generic
// blockmap document. Returns (nil, nil) when the document carries no
// usable file list — "nothing to verify", which is distinct from
// malformed metadata.
//
// An unexpected format version and a document with more than one file
// entry are both tolerated with a warning on logger (the extra
// entries are ignored). A nil logger falls back to slog.Default.
func ParseDocument(document map[string]any, logger *slog.Logger) (*FileEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if version := DocumentVersion(document); version != "" && version != FormatVersion {
		logger.Warn("unexpected blockmap version, assuming compatible layout",
			"version", version, "expected", FormatVersion)
	}

	files, ok := arrayValue(document["files"])
	if !ok || len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		logger.Warn("blockmap contains multiple file entries, using the first",
			"count", len(files))
	}

	entry, ok := objectValue(files[0])
	if !ok {
		return nil, fmt.Errorf("blockmap file entry is not an object")
	}
	return parseFileEntry(entry)
}

// parseFileEntry converts one decoded file object into a FileEntry.
// Fields that are absent stay at their zero value (Validate and the
// verifier report missing arrays); fields that are present with the
// wrong shape are errors naming the field. The offset is the lone
// exception: anything that is not an integer-shaped value falls back
// to zero, because many blockmaps simply omit a zero offset.
func parseFileEntry(entry map[string]any) (*FileEntry, error) {
	result := &FileEntry{}

	result.Name, _ = stringValue(entry["name"])
	result.Offset, _ = intValue(entry["offset"])

	if raw, present := entry["checksums"]; present {
		values, ok := arrayValue(raw)
		if !ok {
			return nil, fmt.Errorf("blockmap field %q is not an array", "checksums")
		}
		result.Checksums = make([]string, len(values))
		for i, value := range values {
			checksum, ok := stringValue(value)
			if !ok {
				return nil, fmt.Errorf("blockmap field %q: element %d is not a string", "checksums", i)
			}
			result.Checksums[i] = checksum
		}
	}

	if raw, present := entry["sizes"]; present {
		values, ok := arrayValue(raw)
		if !ok {
			return nil, fmt.Errorf("blockmap field %q is not an array", "sizes")
		}
		result.Sizes = make([]int64, len(values))
		for i, value := range values {
			size, ok := intValue(value)
			if !ok {
				return nil, fmt.Errorf("blockmap field %q: element %d is not an integer", "sizes", i)
			}
			result.Sizes[i] = size
		}
	}

	return result, nil
}

// stringValue probes a decoded value for a string.
func stringValue(value any) (string, bool) {
	text, ok := value.(string)
	return text, ok
}

// intValue probes a decoded value for an integer. JSON decoders do
// not preserve integer typing — a size may arrive as float64,
// json.Number, or a native integer — so every integer-valued
// representation is coerced losslessly. A fractional float is not an
// integer and reports false.
func intValue(value any) (int64, bool) {
	switch number := value.(type) {
	case int64:
		return number, true
	case int:
		return int64(number), true
	case float64:
		if number != math.Trunc(number) || math.IsInf(number, 0) {
			return 0, false
		}
		return int64(number), true
	case json.Number:
		parsed, err := number.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// arrayValue probes a decoded value for an array.
func arrayValue(value any) ([]any, bool) {
	values, ok := value.([]any)
	return values, ok
}

// objectValue probes a decoded value for a nested object.
func objectValue(value any) (map[string]any, bool) {
	object, ok := value.(map[string]any)
	return object, ok
}
