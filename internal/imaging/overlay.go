package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
)

// RenderOptions controls RenderBoxes.
type RenderOptions struct {
	// LineWidth is the rectangle stroke width in pixels. Default 2.
	LineWidth float64

	// Color is a fixed stroke color such as "#063970". When empty every box
	// gets its own hue.
	Color string

	// ShowLabels draws each box's label text above it.
	ShowLabels bool

	// FillOpacity tints the inside of each box, 0 disables.
	FillOpacity float64
}

// RenderResult is the annotated page.
type RenderResult struct {
	EncodedImage
	BoxCount int `json:"box_count"`
}

// RenderBoxes draws boxes on a copy of img and encodes the result. labels may
// be nil or shorter than boxes; missing labels are not drawn.
func RenderBoxes(img image.Image, boxes []grouping.Box, labels []string, opts RenderOptions) (*RenderResult, error) {
	out, err := DrawBoxes(img, boxes, labels, opts)
	if err != nil {
		return nil, err
	}
	encoded, err := encodePNG(out)
	if err != nil {
		return nil, err
	}
	return &RenderResult{EncodedImage: *encoded, BoxCount: len(boxes)}, nil
}

// DrawBoxes is RenderBoxes without the encoding step.
func DrawBoxes(img image.Image, boxes []grouping.Box, labels []string, opts RenderOptions) (image.Image, error) {
	if opts.LineWidth <= 0 {
		opts.LineWidth = 2
	}

	var fixed *colorful.Color
	if opts.Color != "" {
		c, err := colorful.Hex(opts.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid box color %q: %w", opts.Color, err)
		}
		fixed = &c
	}

	dc := gg.NewContextForImage(img)
	origin := img.Bounds().Min
	palette := Palette(len(boxes))

	for i, box := range boxes {
		c := palette[i]
		if fixed != nil {
			c = *fixed
		}
		x := box.Left - float64(origin.X)
		y := box.Top - float64(origin.Y)

		if opts.FillOpacity > 0 {
			dc.SetRGBA(c.R, c.G, c.B, math.Min(opts.FillOpacity, 1))
			dc.DrawRectangle(x, y, box.Width(), box.Height())
			dc.Fill()
		}

		dc.SetRGB(c.R, c.G, c.B)
		dc.SetLineWidth(opts.LineWidth)
		dc.DrawRectangle(x, y, box.Width(), box.Height())
		dc.Stroke()

		if opts.ShowLabels && i < len(labels) && labels[i] != "" {
			drawLabel(dc, labels[i], x, y, c)
		}
	}

	return dc.Image(), nil
}

// drawLabel writes text on a filled tab sitting on the box's top edge, or
// inside the box when there is no room above it.
func drawLabel(dc *gg.Context, text string, x, y float64, c colorful.Color) {
	w, h := dc.MeasureString(text)
	pad := 2.0
	top := y - h - 2*pad
	if top < 0 {
		top = y
	}

	dc.SetRGB(c.R, c.G, c.B)
	dc.DrawRectangle(x, top, w+2*pad, h+2*pad)
	dc.Fill()

	_, _, l := c.Hsl()
	if l > 0.6 {
		dc.SetRGB(0, 0, 0)
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.DrawStringAnchored(text, x+pad, top+pad, 0, 1)
}

// Palette returns n visually distinct colors. Hues step by the golden angle in
// HCL space, so neighbouring boxes differ even when n is large, and the result
// is the same for the same n.
func Palette(n int) []colorful.Color {
	const goldenAngle = 137.50776405003785
	colors := make([]colorful.Color, n)
	for i := range colors {
		h := math.Mod(float64(i)*goldenAngle+20, 360)
		colors[i] = colorful.Hcl(h, 0.7, 0.55).Clamped()
	}
	return colors
}
