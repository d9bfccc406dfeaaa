package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
)

// CropBox cuts one flashcard out of img.
//
// The box is grown by padding pixels on every side and clipped to the image.
// A scale other than 1 resizes the result with Lanczos resampling, which helps
// when a small caption is shown on its own.
func CropBox(img image.Image, box grouping.Box, padding int, scale float64) (*EncodedImage, error) {
	bounds := img.Bounds()
	rect := image.Rect(
		int(math.Floor(box.Left))-padding,
		int(math.Floor(box.Top))-padding,
		int(math.Ceil(box.Right))+padding,
		int(math.Ceil(box.Bottom))+padding,
	).Intersect(bounds)

	if rect.Empty() {
		return nil, fmt.Errorf("box (%g,%g)-(%g,%g) lies outside image bounds (%d,%d)-(%d,%d)",
			box.Left, box.Top, box.Right, box.Bottom,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)
	if scale > 0 && scale != 1.0 {
		w := max(1, int(float64(cropped.Bounds().Dx())*scale))
		h := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	return encodePNG(cropped)
}
