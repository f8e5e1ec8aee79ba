package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/bmharper/cimg/v2"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	pdforient "github.com/JamesStandbridge/pdf-orientation-corrector"
)

const version = "1.0.0"

func main() {
	root := newRootCmd()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		batchSize    int
		dpi          int
		workers      int
		verbose      bool
		noPreprocess bool
		tesseract    string
	)

	cmd := &cobra.Command{
		Use:   "pdforient <input.pdf> <output.pdf>",
		Short: "Detect and correct the page orientation of PDF documents",
		Long: `pdforient inspects every page of a PDF with Tesseract's orientation
detection and writes a copy with rotated pages turned upright again.

Pages are processed in concurrent batches; the output preserves the page
order and count of the input, only per-page rotation changes.`,
		Example: `  # Fix a scanned document
  pdforient scan.pdf scan-fixed.pdf

  # Larger batches, higher rendering resolution, progress narration
  pdforient scan.pdf scan-fixed.pdf --batch_size 20 --dpi 300 --verbose`,
		Args: cobra.ExactArgs(2),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			opts := pdforient.DefaultOptions()
			opts.BatchSize = batchSize
			opts.DPI = dpi
			opts.Workers = workers
			opts.Preprocess = !noPreprocess
			opts.TesseractBinary = tesseractBinary(tesseract)
			opts.Logger = logger

			summary, err := pdforient.CorrectOrientation(cmd.Context(), args[0], args[1], opts)
			if err != nil {
				return asUserError(err, args[0])
			}
			logger.Info("orientation corrected", "pages", summary.Pages, "rotated", summary.Rotated, "output", args[1])
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch_size", pdforient.DefaultBatchSize, "number of pages to process in each batch")
	cmd.Flags().IntVar(&dpi, "dpi", pdforient.DefaultDPI, "rendering resolution for orientation detection")
	cmd.Flags().IntVar(&workers, "workers", 0, "max batches processed in parallel (0 = one worker per batch)")
	cmd.Flags().BoolVar(&noPreprocess, "no-preprocess", false, "skip image preprocessing before detection")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable step-by-step progress logging")
	cmd.PersistentFlags().StringVar(&tesseract, "tesseract", "", "path to the tesseract binary (default $PDFORIENT_TESSERACT or \"tesseract\")")

	cmd.AddCommand(newInspectCmd(&verbose, &tesseract))
	cmd.AddCommand(newDeskewCmd(&verbose))

	return cmd
}

func newInspectCmd(verbose *bool, tesseract *string) *cobra.Command {
	var (
		dpi          int
		maxAngle     float64
		noPreprocess bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <input.pdf>",
		Short: "Report per-page orientation diagnostics without writing anything",
		Long: `inspect renders every page and prints what the pipeline sees: whether the
page has an embedded text layer, the estimated skew angle, the raw
orientation report and the rotation that would be applied, plus a short
OCR sample of the page text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pdforient.OpenDocument(args[0])
			if err != nil {
				return asUserError(err, args[0])
			}
			defer doc.Close()

			opts := pdforient.DefaultOptions()
			opts.DPI = dpi
			opts.Preprocess = !noPreprocess
			opts.TesseractBinary = tesseractBinary(*tesseract)
			opts.Logger = newLogger(*verbose)

			probe := pdforient.NewTextProbe()
			defer probe.Close()

			scanned, err := doc.IsScanned()
			if err != nil {
				return asUserError(err, args[0])
			}
			fmt.Printf("%s: %d pages, scanned=%v\n", args[0], doc.NumPages, scanned)

			for page := 0; page < doc.NumPages; page++ {
				hasText, err := doc.HasTextLayer(page)
				if err != nil {
					return asUserError(err, args[0])
				}
				img, err := doc.RenderPage(page, dpi)
				if err != nil {
					return asUserError(err, args[0])
				}
				skew := pdforient.PageSkewAngle(img, maxAngle)

				report := "-"
				det, err := doc.AnalyzePage(cmd.Context(), page, opts)
				var detErr *pdforient.DetectionError
				switch {
				case errors.As(err, &detErr):
					report = "no confident orientation"
				case err != nil:
					return asUserError(err, args[0])
				default:
					report = fmt.Sprintf("orientation=%d osd_skew=%d rotation=%+d",
						det.Orientation, det.Skew, pdforient.DecideRotation(det))
				}

				sample := ocrSample(probe, img)
				fmt.Printf("page %3d: text-layer=%-5v skew=%+6.2f  %-40s  %q\n",
					page+1, hasText, skew, report, sample)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&dpi, "dpi", pdforient.DefaultDPI, "rendering resolution")
	cmd.Flags().Float64Var(&maxAngle, "max-angle", pdforient.DefaultMaxSkewAngle, "skew search range in degrees")
	cmd.Flags().BoolVar(&noPreprocess, "no-preprocess", false, "skip image preprocessing before detection")

	return cmd
}

func newDeskewCmd(verbose *bool) *cobra.Command {
	var (
		dpi      int
		maxAngle float64
	)

	cmd := &cobra.Command{
		Use:   "deskew <input.pdf> <output.pdf>",
		Short: "Straighten slightly skewed scans by resampling the page images",
		Long: `deskew renders every page, corrects small skew angles and 90-degree
rotations, and rebuilds the document from the straightened images. Unlike
plain orientation correction this resamples the pages, so the output is a
new image-based PDF.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := pdforient.DeskewFile(cmd.Context(), args[0], args[1], pdforient.DeskewOptions{
				MaxAngle: maxAngle,
				DPI:      dpi,
				Logger:   newLogger(*verbose),
			})
			if err != nil {
				return asUserError(err, args[0])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&dpi, "dpi", pdforient.DefaultDPI, "rendering resolution")
	cmd.Flags().Float64Var(&maxAngle, "max-angle", pdforient.DefaultMaxSkewAngle, "largest skew angle to correct, in degrees")

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// tesseractBinary resolves the flag, then the environment, then the default.
func tesseractBinary(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("PDFORIENT_TESSERACT")
}

// asUserError maps a missing input file to a distinct message; everything
// else is reported generically.
func asUserError(err error, input string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("input file not found: %s", input)
	}
	return fmt.Errorf("unexpected error: %w", err)
}

// ocrSample returns a short single-line OCR sample of the page, or "" if the
// engine finds nothing.
func ocrSample(probe *pdforient.TextProbe, img *cimg.Image) string {
	encoded, err := cimg.Compress(img, cimg.MakeCompressParams(cimg.Sampling444, 95, 0))
	if err != nil {
		return ""
	}
	text, err := probe.Sample(encoded)
	if err != nil {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 60 {
		text = text[:60] + "..."
	}
	return text
}
