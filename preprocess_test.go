package pdforient

import "testing"

func TestBinarize(t *testing.T) {
	pix := []byte{0, 100, 120, 121, 200, 255}
	binarize(pix, binarizeThreshold)
	want := []byte{0, 0, 0, 255, 255, 255}
	for i := range pix {
		if pix[i] != want[i] {
			t.Errorf("pixel %d = %d, want %d (cutoff is exclusive at %d)", i, pix[i], want[i], binarizeThreshold)
		}
	}
}

func TestEnhanceContrast(t *testing.T) {
	// Mean is 128; doubling the distance from the mean pushes darks darker
	// and lights lighter, clamped to the byte range.
	pix := []byte{64, 128, 192}
	enhanceContrast(pix, 2.0)
	want := []byte{0, 128, 255}
	for i := range pix {
		if pix[i] != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, pix[i], want[i])
		}
	}
}

func TestEnhanceContrastClamps(t *testing.T) {
	pix := []byte{0, 10, 250, 255}
	enhanceContrast(pix, 2.0)
	if pix[0] != 0 || pix[3] != 255 {
		t.Errorf("extremes not clamped: %v", pix)
	}
	if pix[1] > pix[2] {
		t.Errorf("contrast enhancement broke pixel ordering: %v", pix)
	}
}

func TestMedian9(t *testing.T) {
	tests := []struct {
		window [9]byte
		want   byte
	}{
		{[9]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, 5},
		{[9]byte{9, 8, 7, 6, 5, 4, 3, 2, 1}, 5},
		{[9]byte{0, 0, 0, 0, 255, 0, 0, 0, 0}, 0},
		{[9]byte{255, 255, 255, 255, 0, 255, 255, 255, 255}, 255},
	}
	for _, tt := range tests {
		if got := median9(tt.window); got != tt.want {
			t.Errorf("median9(%v) = %d, want %d", tt.window, got, tt.want)
		}
	}
}

// A single noise speck on a uniform background disappears; a solid block
// survives.
func TestMedianFilter3(t *testing.T) {
	const w, h = 5, 5
	pix := make([]byte, w*h)
	pix[2*w+2] = 255 // lone speck in the middle

	medianFilter3(pix, w, h)
	for i, p := range pix {
		if p != 0 {
			t.Errorf("pixel %d = %d after median filter, want 0 (speck should vanish)", i, p)
		}
	}

	// 3x3 solid block: its center is preserved.
	pix = make([]byte, w*h)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			pix[y*w+x] = 255
		}
	}
	medianFilter3(pix, w, h)
	if pix[2*w+2] != 255 {
		t.Errorf("center of solid block = %d, want 255", pix[2*w+2])
	}
}

func TestMedianFilter3TinyImage(t *testing.T) {
	// Images narrower than the window pass through untouched.
	pix := []byte{10, 20}
	medianFilter3(pix, 2, 1)
	if pix[0] != 10 || pix[1] != 20 {
		t.Errorf("tiny image modified: %v", pix)
	}
}
