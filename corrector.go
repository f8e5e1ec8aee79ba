package pdforient

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// Defaults match the original tool's documented interface.
const (
	DefaultBatchSize = 10
	DefaultDPI       = 200
)

// Options configures the orientation-correction pipeline.
// The zero value is not useful; start from DefaultOptions.
type Options struct {
	// BatchSize is the number of pages per unit of concurrent dispatch.
	BatchSize int
	// DPI is the raster resolution fed to the renderer. Higher values improve
	// detection on faint scans at the cost of latency.
	DPI int
	// Workers bounds the number of batches processed in parallel.
	// Zero means one goroutine per batch.
	Workers int
	// Preprocess enables the grayscale/contrast/median/threshold pass before
	// detection.
	Preprocess bool
	// TesseractBinary is the Tesseract executable to invoke.
	// Empty means DefaultTesseractBinary.
	TesseractBinary string
	// Logger receives step-by-step progress at debug level. Observability
	// only, never behavior-affecting. Nil discards everything.
	Logger *slog.Logger
}

// DefaultOptions returns the canonical pipeline configuration.
func DefaultOptions() Options {
	return Options{
		BatchSize:  DefaultBatchSize,
		DPI:        DefaultDPI,
		Preprocess: true,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Logger == nil {
		o.Logger = discardLogger
	}
	return o
}

// Summary reports what a correction run did.
type Summary struct {
	Pages   int
	Rotated int
}

// CorrectOrientation detects the text orientation of every page in the input
// PDF and writes a copy with all pages counter-rotated to upright. The input
// file is never modified; the output appears atomically or not at all.
func CorrectOrientation(ctx context.Context, inputPath, outputPath string, opts Options) (Summary, error) {
	opts = opts.withDefaults()
	opts.Logger.Debug("starting orientation correction", "input", inputPath, "pages_per_batch", opts.BatchSize, "dpi", opts.DPI)

	doc, err := OpenDocument(inputPath)
	if err != nil {
		return Summary{}, err
	}
	defer doc.Close()

	decisions, err := doc.DetectRotations(ctx, opts)
	if err != nil {
		return Summary{}, err
	}

	corrected, err := applyRotations(doc.Bytes(), decisions)
	if err != nil {
		return Summary{}, err
	}
	if err := writeFileAtomic(outputPath, corrected); err != nil {
		return Summary{}, err
	}

	summary := Summary{Pages: len(decisions)}
	for _, d := range decisions {
		if d.Rotation != 0 {
			summary.Rotated++
		}
	}
	opts.Logger.Debug("orientation correction completed", "output", outputPath, "rotated", summary.Rotated)
	return summary, nil
}

// rotationOrder fixes the sequence in which rotation groups are applied, so
// the rewrite is deterministic.
var rotationOrder = []int{-90, 90, 180}

// applyRotations rewrites the document with each decided rotation applied.
// Pages are grouped by rotation value and each group is applied in one pdfcpu
// pass over an in-memory copy. A document with no rotated pages passes
// through unchanged.
func applyRotations(input []byte, decisions []Decision) ([]byte, error) {
	groups := pagesByRotation(decisions)
	current := input
	for _, rotation := range rotationOrder {
		pages := groups[rotation]
		if len(pages) == 0 {
			continue
		}
		out := &bytes.Buffer{}
		if err := pdfapi.Rotate(bytes.NewReader(current), out, rotation, pages, nil); err != nil {
			return nil, fmt.Errorf("rotate pages %v by %d: %w", pages, rotation, err)
		}
		current = out.Bytes()
	}
	return current, nil
}

// pagesByRotation groups decided pages by rotation value, as 1-based page
// selections in pdfcpu's format. Pages that need no rotation are left out.
func pagesByRotation(decisions []Decision) map[int][]string {
	groups := map[int][]string{}
	for _, d := range decisions {
		if d.Rotation == 0 {
			continue
		}
		groups[d.Rotation] = append(groups[d.Rotation], strconv.Itoa(d.Page+1))
	}
	return groups
}

// writeFileAtomic writes data to path via a temp file in the same directory
// and a rename, so an interrupted run never leaves a partial output file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
