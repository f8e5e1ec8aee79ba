package pdforient

import (
	"github.com/bmharper/cimg/v2"
)

// Binarization cutoff used after contrast enhancement.
const binarizeThreshold = 120

// Preprocess prepares a rendered page for orientation detection:
// single-channel grayscale, 2x contrast enhancement, 3x3 median filter to knock
// out scanner noise, and finally a binary threshold. OSD is much more reliable
// on the resulting two-level image than on a raw scan.
func Preprocess(img *cimg.Image) *cimg.Image {
	gray := img.ToGray()
	enhanceContrast(gray.Pixels, 2.0)
	medianFilter3(gray.Pixels, gray.Width, gray.Height)
	binarize(gray.Pixels, binarizeThreshold)
	return gray
}

// enhanceContrast scales every pixel's distance from the image mean by factor,
// clamping to [0, 255].
func enhanceContrast(pix []byte, factor float64) {
	if len(pix) == 0 {
		return
	}
	sum := 0
	for _, p := range pix {
		sum += int(p)
	}
	mean := float64(sum) / float64(len(pix))
	for i, p := range pix {
		v := mean + (float64(p)-mean)*factor
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		pix[i] = byte(v + 0.5)
	}
}

// medianFilter3 replaces every pixel with the median of its 3x3 neighborhood,
// in place. Neighbors outside the image are clamped to the nearest edge pixel.
func medianFilter3(pix []byte, width, height int) {
	if width < 3 || height < 3 {
		return
	}
	src := make([]byte, len(pix))
	copy(src, pix)
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	var window [9]byte
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				sy := clamp(y+dy, height-1)
				for dx := -1; dx <= 1; dx++ {
					sx := clamp(x+dx, width-1)
					window[n] = src[sy*width+sx]
					n++
				}
			}
			pix[y*width+x] = median9(window)
		}
	}
}

// median9 returns the median of 9 bytes (insertion sort, the window is tiny).
func median9(w [9]byte) byte {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j-1] > w[j]; j-- {
			w[j-1], w[j] = w[j], w[j-1]
		}
	}
	return w[4]
}

// binarize maps every pixel above the cutoff to white and the rest to black.
func binarize(pix []byte, cutoff byte) {
	for i, p := range pix {
		if p > cutoff {
			pix[i] = 255
		} else {
			pix[i] = 0
		}
	}
}
