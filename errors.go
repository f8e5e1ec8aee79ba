package pdforient

import "fmt"

// RenderError means a source page could not be rasterized.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page+1, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// DetectionError means the OCR engine could not produce an interpretable
// orientation report for a page (blank page, non-text image, or output in an
// unexpected format). It is never defaulted away: a silently assumed
// orientation would mis-rotate the page.
type DetectionError struct {
	Page   int
	Output string
	Err    error
}

func (e *DetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("detect orientation of page %d: %v", e.Page+1, e.Err)
	}
	return fmt.Sprintf("detect orientation of page %d: unexpected OSD output %q", e.Page+1, e.Output)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}
