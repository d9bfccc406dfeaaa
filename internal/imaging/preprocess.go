package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
)

// ocrContrast is the contrast boost applied before Tesseract, in bild's -1..1
// range.
const ocrContrast = 0.4

// Preprocess prepares a page for Tesseract: grayscale with stronger contrast.
// The geometry is unchanged, so word boxes found on the result apply to the
// original image.
func Preprocess(img image.Image) image.Image {
	return adjust.Contrast(effect.Grayscale(img), ocrContrast)
}
