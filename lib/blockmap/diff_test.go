// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import (
	"math"
	"strings"
	"testing"
)

func TestCompareIdentical(t *testing.T) {
	entry := &FileEntry{
		Checksums: []string{"A", "B", "C"},
		Sizes:     []int64{10, 20, 30},
	}

	summary, err := Compare(entry, entry)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.TotalBytes != 60 {
		t.Errorf("TotalBytes = %d, want 60", summary.TotalBytes)
	}
	if summary.SkippedBytes != 60 {
		t.Errorf("SkippedBytes = %d, want 60", summary.SkippedBytes)
	}
	if summary.Ratio != 1.0 {
		t.Errorf("Ratio = %v, want 1.0", summary.Ratio)
	}
}

func TestCompareDisjoint(t *testing.T) {
	old := &FileEntry{Checksums: []string{"A", "B"}, Sizes: []int64{4, 4}}
	updated := &FileEntry{Checksums: []string{"C", "D"}, Sizes: []int64{4, 4}}

	summary, err := Compare(old, updated)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.SkippedBytes != 0 {
		t.Errorf("SkippedBytes = %d, want 0", summary.SkippedBytes)
	}
	if summary.TotalBytes != 8 {
		t.Errorf("TotalBytes = %d, want 8", summary.TotalBytes)
	}
}

func TestComparePartialOverlap(t *testing.T) {
	// Shared checksum A with equal size is skippable; C is new.
	old := &FileEntry{Checksums: []string{"A", "B"}, Sizes: []int64{4, 4}}
	updated := &FileEntry{Checksums: []string{"A", "C"}, Sizes: []int64{4, 8}}

	summary, err := Compare(old, updated)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.TotalBytes != 12 {
		t.Errorf("TotalBytes = %d, want 12", summary.TotalBytes)
	}
	if summary.SkippedBytes != 4 {
		t.Errorf("SkippedBytes = %d, want 4", summary.SkippedBytes)
	}
	if math.Abs(summary.Ratio-4.0/12.0) > 1e-9 {
		t.Errorf("Ratio = %v, want %v", summary.Ratio, 4.0/12.0)
	}
}

func TestCompareSizeMismatchNotSkippable(t *testing.T) {
	// Same checksum, different size: the checksum match alone must
	// not count the block as skippable.
	old := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{10}}
	updated := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{20}}

	summary, err := Compare(old, updated)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.SkippedBytes != 0 {
		t.Errorf("SkippedBytes = %d, want 0", summary.SkippedBytes)
	}
}

func TestCompareDuplicateChecksumLastWins(t *testing.T) {
	// The old blockmap maps A to 10 and then to 20; the later
	// occurrence wins, so only the size-20 new block is skippable.
	old := &FileEntry{Checksums: []string{"A", "A"}, Sizes: []int64{10, 20}}

	atTen := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{10}}
	summary, err := Compare(old, atTen)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.SkippedBytes != 0 {
		t.Errorf("size 10: SkippedBytes = %d, want 0", summary.SkippedBytes)
	}

	atTwenty := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{20}}
	summary, err = Compare(old, atTwenty)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.SkippedBytes != 20 {
		t.Errorf("size 20: SkippedBytes = %d, want 20", summary.SkippedBytes)
	}
}

func TestCompareEmptyNewBlockmap(t *testing.T) {
	old := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{4}}
	updated := &FileEntry{Checksums: []string{}, Sizes: []int64{}}

	summary, err := Compare(old, updated)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if summary.TotalBytes != 0 {
		t.Errorf("TotalBytes = %d, want 0", summary.TotalBytes)
	}
	// Zero total bytes means "no data to compare" — NaN, not 0 or 1.
	if !math.IsNaN(summary.Ratio) {
		t.Errorf("Ratio = %v, want NaN", summary.Ratio)
	}
}

func TestCompareValidationOrder(t *testing.T) {
	invalid := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{1, 2}}

	// Both invalid: the old blockmap's error wins.
	_, err := Compare(invalid, invalid)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "old blockmap") {
		t.Errorf("error %q should report the old blockmap first", err)
	}

	// Only the new one invalid.
	valid := &FileEntry{Checksums: []string{"A"}, Sizes: []int64{1}}
	_, err = Compare(valid, invalid)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "new blockmap") {
		t.Errorf("error %q should name the new blockmap", err)
	}
}
