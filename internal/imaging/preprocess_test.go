package imaging

import (
	"image/color"
	"testing"
)

func TestPreprocess(t *testing.T) {
	src := createTestImage(40, 30, color.RGBA{200, 40, 40, 255})
	src.Set(5, 5, color.RGBA{10, 10, 200, 255})

	out := Preprocess(src)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}
	for _, p := range [][2]int{{0, 0}, {5, 5}, {39, 29}} {
		r, g, b, _ := out.At(p[0], p[1]).RGBA()
		if r != g || g != b {
			t.Errorf("pixel %v = (%d,%d,%d), want gray", p, r, g, b)
		}
	}
}
