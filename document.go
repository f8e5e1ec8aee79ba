package pdforient

import (
	"os"

	"github.com/bmharper/cimg/v2"
	"github.com/gen2brain/go-fitz"
)

// Document is an open PDF, ready for orientation analysis.
// Rendering goes through go-fitz, which serializes access to the underlying
// document internally, so pages may be rendered from multiple goroutines.
type Document struct {
	fz       *fitz.Document
	raw      []byte
	NumPages int
}

// OpenDocument loads a PDF from a file.
func OpenDocument(filename string) (*Document, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return OpenDocumentFromMemory(raw)
}

// OpenDocumentFromMemory loads a PDF from bytes.
func OpenDocumentFromMemory(doc []byte) (*Document, error) {
	fz, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, err
	}
	return &Document{
		fz:       fz,
		raw:      doc,
		NumPages: fz.NumPage(),
	}, nil
}

func (d *Document) Close() {
	d.fz.Close()
}

// Bytes returns the original document bytes. The returned slice must not be modified.
func (d *Document) Bytes() []byte {
	return d.raw
}

// RenderPage rasterizes the given zero-based page at the given DPI.
func (d *Document) RenderPage(page int, dpi int) (*cimg.Image, error) {
	rgba, err := d.fz.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, &RenderError{Page: page, Err: err}
	}
	img, err := cimg.FromImage(rgba, true)
	if err != nil {
		return nil, &RenderError{Page: page, Err: err}
	}
	return img, nil
}

// HasTextLayer returns true if the page carries embedded (selectable) text.
// Scanned documents have none; their orientation can only be judged via OCR.
func (d *Document) HasTextLayer(page int) (bool, error) {
	txt, err := d.fz.Text(page)
	if err != nil {
		return false, err
	}
	return txt != "", nil
}

// IsScanned returns true if no page in the document has embedded text.
func (d *Document) IsScanned() (bool, error) {
	for page := 0; page < d.NumPages; page++ {
		hasText, err := d.HasTextLayer(page)
		if err != nil {
			return false, err
		}
		if hasText {
			return false, nil
		}
	}
	return true, nil
}
