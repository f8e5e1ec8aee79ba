package pdforient

import (
	"strings"
	"testing"
)

// Shape of a real Tesseract --psm 0 report.
const sampleOSD = `Page number: 0
Orientation in degrees: 270
Rotate: 90
Orientation confidence: 15.63
Script: Latin
Script confidence: 4.57
`

func TestParseOSD(t *testing.T) {
	det, err := parseOSD(sampleOSD)
	if err != nil {
		t.Fatalf("parseOSD: %v", err)
	}
	if det.Orientation != 270 {
		t.Errorf("Orientation = %d, want 270", det.Orientation)
	}
	if det.Skew != 90 {
		t.Errorf("Skew = %d, want 90", det.Skew)
	}
}

func TestParseOSDMalformed(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"empty", ""},
		{"missing rotate", "Orientation in degrees: 90\n"},
		{"missing orientation", "Rotate: 270\n"},
		{"error chatter only", "Too few characters. Skipping this page\nError during processing.\n"},
		{"wrong labels", "rotate: 90\norientation in degrees: 270\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseOSD(tt.output); err == nil {
				t.Errorf("parseOSD(%q) succeeded, want error", tt.output)
			}
		})
	}
}

func TestParseOSDIgnoresSurroundingText(t *testing.T) {
	output := "Warning: Invalid resolution 0 dpi. Using 70 instead.\n" + sampleOSD
	det, err := parseOSD(output)
	if err != nil {
		t.Fatalf("parseOSD: %v", err)
	}
	if det.Orientation != 270 || det.Skew != 90 {
		t.Errorf("parseOSD = %+v, want {Skew:90 Orientation:270}", det)
	}
}

func TestDetectionErrorMessage(t *testing.T) {
	err := &DetectionError{Page: 3, Output: "Too few characters."}
	if !strings.Contains(err.Error(), "page 4") {
		t.Errorf("DetectionError should report the 1-based page: %q", err.Error())
	}
}
