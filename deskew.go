package pdforient

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/bmharper/cimg/v2"
	"github.com/bmharper/docangle"
	"github.com/bmharper/textorient"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// DefaultMaxSkewAngle bounds the skew search for deskewing. Scans are rarely
// off by more than a couple of degrees.
const DefaultMaxSkewAngle = 2.5

// DeskewOptions configures the fine-angle straightening pass.
type DeskewOptions struct {
	// MaxAngle is the largest skew (in degrees, either direction) that will be
	// searched for and corrected. Zero means DefaultMaxSkewAngle.
	MaxAngle float64
	// DPI is the raster resolution for page rendering. Zero means DefaultDPI.
	DPI int
	// Logger receives per-page progress at debug level. Nil discards.
	Logger *slog.Logger
}

func (o DeskewOptions) withDefaults() DeskewOptions {
	if o.MaxAngle <= 0 {
		o.MaxAngle = DefaultMaxSkewAngle
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Logger == nil {
		o.Logger = discardLogger
	}
	return o
}

// DeskewFile renders every page of the input PDF, corrects small skew angles
// and 90-degree-multiple rotations, and writes a rebuilt PDF to outputPath.
//
// Unlike CorrectOrientation, which only touches rotation metadata, this pass
// resamples the page images, so the output is a new image-based document.
func DeskewFile(ctx context.Context, inputPath, outputPath string, opts DeskewOptions) error {
	doc, err := OpenDocument(inputPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	orient, err := textorient.NewOrient()
	if err != nil {
		return err
	}
	out, err := doc.Deskew(ctx, orient, opts)
	if err != nil {
		return err
	}
	return writeFileAtomic(outputPath, out)
}

// Deskew straightens every page and rebuilds the document from the corrected
// images.
func (d *Document) Deskew(ctx context.Context, orient *textorient.Orient, opts DeskewOptions) ([]byte, error) {
	opts = opts.withDefaults()
	pages := []io.Reader{}
	for page := 0; page < d.NumPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := d.RenderPage(page, opts.DPI)
		if err != nil {
			return nil, err
		}
		angle := PageSkewAngle(img, opts.MaxAngle)
		fixed := img
		if angle != 0 {
			fixed = rotateImage(img, -angle)
		}
		// Straightened pages can still be on their side or upside down;
		// textorient settles the 90-degree multiple.
		upright, err := orient.MakeUpright(fixed)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("page straightened", "page", page+1, "angle", angle)
		jpg, err := cimg.Compress(upright, cimg.MakeCompressParams(cimg.Sampling444, 95, 0))
		if err != nil {
			return nil, err
		}
		pages = append(pages, bytes.NewReader(jpg))
	}
	return buildPDFFromImages(pages)
}

// PageSkewAngle estimates the skew of a rendered page in degrees, searching
// within [-maxAngle, maxAngle].
func PageSkewAngle(img *cimg.Image, maxAngle float64) float64 {
	gray := img.ToGray()
	params := docangle.NewWhiteLinesParams()
	params.MinDeltaDegrees = -maxAngle
	params.MaxDeltaDegrees = maxAngle
	_, angle := docangle.GetAngleWhiteLines(&docangle.Image{
		Pixels: gray.Pixels,
		Width:  gray.Width,
		Height: gray.Height,
	}, params)
	return angle
}

// rotateImage returns img rotated by angle degrees. For small angles the
// canvas size is kept and the corners clip into the padding that rotated
// scans carry implicitly; otherwise the canvas grows to fit.
func rotateImage(img *cimg.Image, angle float64) *cimg.Image {
	const cropLimitDegrees = 5
	var newWidth, newHeight int
	switch {
	case math.Abs(angle) <= cropLimitDegrees:
		newWidth = img.Width
		newHeight = img.Height
	case math.Abs(angle-90) <= cropLimitDegrees || math.Abs(angle+90) <= cropLimitDegrees:
		// Landscape version of the same clipping shortcut.
		newWidth = img.Height
		newHeight = img.Width
	default:
		cosA := math.Abs(math.Cos(angle * math.Pi / 180))
		sinA := math.Abs(math.Sin(angle * math.Pi / 180))
		newWidth = int(float64(img.Width)*cosA + float64(img.Height)*sinA)
		newHeight = int(float64(img.Width)*sinA + float64(img.Height)*cosA)
	}
	fixed := cimg.NewImage(newWidth, newHeight, img.Format)
	cimg.Rotate(img, fixed, angle*math.Pi/180, nil)
	return fixed
}

// buildPDFFromImages assembles a new PDF with one image per page.
func buildPDFFromImages(images []io.Reader) ([]byte, error) {
	output := &bytes.Buffer{}
	importConfig := pdfcpu.DefaultImportConfig()
	importConfig.Scale = 1
	importConfig.Pos = types.Center
	if err := pdfapi.ImportImages(nil, output, images, importConfig, nil); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}
