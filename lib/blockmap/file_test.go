// Copyright 2026 The Deltamap Authors
// SPDX-License-Identifier: Apache-2.0

package blockmap

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestGenerateFixedLayout(t *testing.T) {
	data := testArtifact(250)

	entry, err := Generate(data, "app.exe", 100)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if entry.Name != "app.exe" {
		t.Errorf("Name = %q, want %q", entry.Name, "app.exe")
	}
	if entry.Offset != 0 {
		t.Errorf("Offset = %d, want 0", entry.Offset)
	}

	wantSizes := []int64{100, 100, 50}
	if len(entry.Sizes) != len(wantSizes) {
		t.Fatalf("got %d blocks, want %d", len(entry.Sizes), len(wantSizes))
	}
	for i, want := range wantSizes {
		if entry.Sizes[i] != want {
			t.Errorf("Sizes[%d] = %d, want %d", i, entry.Sizes[i], want)
		}
	}

	// Checksums must be the engine's digests of the derived ranges.
	for i, blockRange := range BlockRanges(0, entry.Sizes) {
		want := Checksum(data, blockRange.Offset, blockRange.Size)
		if entry.Checksums[i] != want {
			t.Errorf("Checksums[%d] = %q, want %q", i, entry.Checksums[i], want)
		}
	}
}

func TestGenerateEmptyData(t *testing.T) {
	entry, err := Generate(nil, "empty.bin", DefaultBlockSize)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(entry.Sizes) != 0 || len(entry.Checksums) != 0 {
		t.Errorf("empty data produced %d blocks", len(entry.Sizes))
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("empty entry should validate: %v", err)
	}
}

func TestGenerateRejectsBadBlockSize(t *testing.T) {
	for _, size := range []int64{0, -1} {
		if _, err := Generate([]byte("x"), "x", size); err == nil {
			t.Errorf("block size %d: expected an error", size)
		}
	}
}

func TestBlockmapFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.blockmap")

	original := &FileEntry{
		Name:      "app-2.1.0.AppImage",
		Offset:    512,
		Checksums: []string{"aaaa", "bbbb", "cccc"},
		Sizes:     []int64{4096, 4096, 1024},
	}

	if err := WriteFile(path, original); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := ReadFile(path, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if loaded == nil {
		t.Fatal("ReadFile returned no metadata")
	}

	if loaded.Name != original.Name {
		t.Errorf("Name = %q, want %q", loaded.Name, original.Name)
	}
	if loaded.Offset != original.Offset {
		t.Errorf("Offset = %d, want %d", loaded.Offset, original.Offset)
	}
	for i := range original.Checksums {
		if loaded.Checksums[i] != original.Checksums[i] {
			t.Errorf("Checksums[%d] = %q, want %q", i, loaded.Checksums[i], original.Checksums[i])
		}
		if loaded.Sizes[i] != original.Sizes[i] {
			t.Errorf("Sizes[%d] = %d, want %d", i, loaded.Sizes[i], original.Sizes[i])
		}
	}
}

// gunzip decompresses an encoded blockmap for wire-format assertions.
func gunzip(t *testing.T, compressed []byte) []byte {
	t.Helper()
	uncompressor, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer uncompressor.Close()
	data, err := io.ReadAll(uncompressor)
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	return data
}

func TestEncodeDocumentWireFormat(t *testing.T) {
	entry := &FileEntry{
		Name:      "setup.exe",
		Checksums: []string{"ck0=", "ck1="},
		Sizes:     []int64{7, 9},
	}

	var buffer bytes.Buffer
	if err := EncodeDocument(&buffer, entry); err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}

	raw := gunzip(t, buffer.Bytes())

	// A zero offset is omitted from the wire form.
	if strings.Contains(string(raw), "offset") {
		t.Errorf("zero offset should be omitted, got: %s", raw)
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		t.Fatalf("wire form is not valid JSON: %v", err)
	}
	if version := DocumentVersion(document); version != FormatVersion {
		t.Errorf("version = %q, want %q", version, FormatVersion)
	}

	files, ok := arrayValue(document["files"])
	if !ok || len(files) != 1 {
		t.Fatalf("files = %v, want exactly one entry", document["files"])
	}
	object, _ := objectValue(files[0])
	if name, _ := stringValue(object["name"]); name != "setup.exe" {
		t.Errorf("name = %q, want %q", name, "setup.exe")
	}
}

func TestEncodeDocumentKeepsNonZeroOffset(t *testing.T) {
	entry := &FileEntry{
		Name:      "padded.bin",
		Offset:    2048,
		Checksums: []string{"x"},
		Sizes:     []int64{1},
	}

	var buffer bytes.Buffer
	if err := EncodeDocument(&buffer, entry); err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}

	raw := gunzip(t, buffer.Bytes())
	if !strings.Contains(string(raw), `"offset":2048`) {
		t.Errorf("non-zero offset missing from wire form: %s", raw)
	}
}

func TestEncodeDocumentRejectsInvalidEntry(t *testing.T) {
	entry := &FileEntry{Checksums: []string{"a"}, Sizes: []int64{1, 2}}
	var buffer bytes.Buffer
	if err := EncodeDocument(&buffer, entry); err == nil {
		t.Fatal("expected an error for mismatched metadata")
	}
}

func TestDecodeDocumentKeepsLargeIntegersExact(t *testing.T) {
	// 2^53+1 has no exact float64 representation. The decoder must
	// deliver it to the document model without rounding.
	const huge = int64(1<<53 + 1)

	var buffer bytes.Buffer
	compressor := gzip.NewWriter(&buffer)
	if _, err := compressor.Write([]byte(`{"version":"2","files":[{"name":"big.bin","checksums":["AAAA"],"sizes":[9007199254740993]}]}`)); err != nil {
		t.Fatal(err)
	}
	if err := compressor.Close(); err != nil {
		t.Fatal(err)
	}

	document, err := DecodeDocument(&buffer)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	entry, err := ParseDocument(document, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if entry.Sizes[0] != huge {
		t.Errorf("Sizes[0] = %d, want %d", entry.Sizes[0], huge)
	}
}

func TestDecodeDocumentRejectsGarbage(t *testing.T) {
	if _, err := DecodeDocument(bytes.NewReader([]byte("not gzip at all"))); err == nil {
		t.Fatal("expected an error for a non-gzip stream")
	}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	// Generated metadata must verify against the data it was built
	// from. The final block ends exactly at the buffer end, so the
	// truncation guard skips it; everything before must hash clean.
	data := testArtifact(10*1024 + 37)

	entry, err := Generate(data, "roundtrip.bin", 1024)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	outcome := Verify(data, entry)
	if outcome.Kind != OutcomeOk {
		t.Fatalf("outcome = %v (%s), want ok", outcome.Kind, outcome.Reason)
	}
	if outcome.Blocks != 11 {
		t.Errorf("Blocks = %d, want 11", outcome.Blocks)
	}

	// Corruption in a middle block is caught.
	data[5000] ^= 0xFF
	outcome = Verify(data, entry)
	if outcome.Kind != OutcomeFailed {
		t.Errorf("outcome = %v, want failed after corruption", outcome.Kind)
	}
}
