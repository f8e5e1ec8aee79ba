package pdforient

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPagesByRotation(t *testing.T) {
	decisions := []Decision{
		{Page: 0, Rotation: -90},
		{Page: 1, Rotation: 0},
		{Page: 2, Rotation: 180},
		{Page: 3, Rotation: -90},
		{Page: 4, Rotation: 90},
	}
	groups := pagesByRotation(decisions)

	want := map[int][]string{
		-90: {"1", "4"},
		90:  {"5"},
		180: {"3"},
	}
	if len(groups) != len(want) {
		t.Fatalf("got groups %v, want %v", groups, want)
	}
	for rotation, pages := range want {
		got := strings.Join(groups[rotation], ",")
		if got != strings.Join(pages, ",") {
			t.Errorf("rotation %d: pages %v, want %v", rotation, groups[rotation], pages)
		}
	}
}

// With nothing to rotate, the rewrite degenerates to a byte-for-byte copy of
// the input.
func TestApplyRotationsNoop(t *testing.T) {
	input := []byte("%PDF-1.4 fake document bytes")
	out, err := applyRotations(input, upright(5))
	if err != nil {
		t.Fatalf("applyRotations: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Error("output differs from input for an already-upright document")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	data := []byte("corrected document")

	if err := writeFileAtomic(path, data); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read back %q, want %q", got, data)
	}

	// No temp file debris.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only out.pdf", names)
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("writeFileAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Errorf("read back %q, want %q", got, "new")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", opts.BatchSize, DefaultBatchSize)
	}
	if opts.DPI != DefaultDPI {
		t.Errorf("DPI = %d, want %d", opts.DPI, DefaultDPI)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Explicit values survive.
	opts = Options{BatchSize: 20, DPI: 300}.withDefaults()
	if opts.BatchSize != 20 || opts.DPI != 300 {
		t.Errorf("explicit options overridden: %+v", opts)
	}
}
