package pdforient

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TextProbe runs plain OCR on page images. It exists for diagnostics: when
// orientation detection fails on a page, the probe shows whether the page has
// any recognizable text at all.
type TextProbe struct {
	client *gosseract.Client
}

// NewTextProbe creates a probe backed by a Tesseract client.
// Close it when done to release the engine.
func NewTextProbe() *TextProbe {
	return &TextProbe{client: gosseract.NewClient()}
}

func (p *TextProbe) Close() error {
	return p.client.Close()
}

// Sample performs OCR on an encoded image (JPEG, PNG, ...) and returns the
// recognized text, trimmed.
func (p *TextProbe) Sample(image []byte) (string, error) {
	if err := p.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := p.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}
