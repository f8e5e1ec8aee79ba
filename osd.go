package pdforient

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// DefaultTesseractBinary is used when Options.TesseractBinary is empty.
// Override with the PDFORIENT_TESSERACT environment variable or the
// --tesseract flag.
const DefaultTesseractBinary = "tesseract"

// Detection is the raw orientation report for a single page.
type Detection struct {
	// Skew is Tesseract's "Rotate:" field, the finer-grained rotation estimate.
	Skew int
	// Orientation is the "Orientation in degrees:" field, the coarse
	// right-angle rotation of the detected text (0/90/180/270).
	Orientation int
}

// Tesseract's OSD report is free text; these two labeled fields are the only
// ones we consume.
var (
	reRotate      = regexp.MustCompile(`Rotate: (\d+)`)
	reOrientation = regexp.MustCompile(`Orientation in degrees: (\d+)`)
)

// runOSD feeds an encoded page image to Tesseract in OSD-only mode
// (--psm 0) and parses the orientation report from its output. The raw output
// is returned alongside, for error reporting.
func runOSD(ctx context.Context, binary string, image []byte, dpi int) (Detection, string, error) {
	if binary == "" {
		binary = DefaultTesseractBinary
	}
	args := []string{"stdin", "stdout", "--psm", "0"}
	if dpi > 0 {
		args = append(args, "--dpi", strconv.Itoa(dpi))
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Tesseract exits non-zero when it finds too few characters to
		// estimate orientation (blank or non-text pages).
		return Detection{}, stdout.String() + stderr.String(), fmt.Errorf("%s: %w: %s", binary, err, bytes.TrimSpace(stderr.Bytes()))
	}
	det, err := parseOSD(stdout.String())
	return det, stdout.String(), err
}

// parseOSD extracts the skew angle and coarse orientation from an OSD report.
// Output that does not carry both fields is an error, never defaulted.
func parseOSD(output string) (Detection, error) {
	rotate := reRotate.FindStringSubmatch(output)
	orientation := reOrientation.FindStringSubmatch(output)
	if rotate == nil || orientation == nil {
		return Detection{}, fmt.Errorf("OSD output is missing Rotate/Orientation fields")
	}
	skew, err := strconv.Atoi(rotate[1])
	if err != nil {
		return Detection{}, fmt.Errorf("OSD Rotate field %q: %w", rotate[1], err)
	}
	orient, err := strconv.Atoi(orientation[1])
	if err != nil {
		return Detection{}, fmt.Errorf("OSD Orientation field %q: %w", orientation[1], err)
	}
	return Detection{Skew: skew, Orientation: orient}, nil
}
