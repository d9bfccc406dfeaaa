package grouping

import (
	"math/rand"
	"sort"
	"testing"
)

// rect builds an axis-aligned annotation with clockwise vertices.
func rect(text string, left, top, right, bottom int) Annotation {
	return Annotation{
		Text: text,
		Vertices: []Vertex{
			{X: left, Y: top},
			{X: right, Y: top},
			{X: right, Y: bottom},
			{X: left, Y: bottom},
		},
	}
}

// tokensOf normalizes annotations without a header and with no filtering.
func tokensOf(t *testing.T, annotations ...Annotation) []Token {
	t.Helper()
	res := Normalize(annotations, ArtifactFilter{MaxDigits: 100}, false)
	if len(res.Rejected) != 0 || len(res.Filtered) != 0 {
		t.Fatalf("unexpected rejections: %+v filtered: %v", res.Rejected, res.Filtered)
	}
	return res.Tokens
}

func regionOf(left, top, right, bottom float64, members ...int) Region {
	return Region{Box: Box{Left: left, Top: top, Right: right, Bottom: bottom}, Members: members}
}

func assertBox(t *testing.T, got Box, want Box) {
	t.Helper()
	if got != want {
		t.Errorf("box = %+v, want %+v", got, want)
	}
}

func assertPartition(t *testing.T, regions []Region, n int) {
	t.Helper()
	seen := make(map[int]int)
	for _, r := range regions {
		if r.Left > r.Right || r.Top > r.Bottom {
			t.Errorf("region %+v violates left<=right, top<=bottom", r.Box)
		}
		for _, id := range r.Members {
			seen[id]++
		}
	}
	for id := 0; id < n; id++ {
		if seen[id] != 1 {
			t.Errorf("token %d appears in %d regions, want 1", id, seen[id])
		}
	}
	if len(seen) != n {
		t.Errorf("regions reference %d distinct tokens, want %d", len(seen), n)
	}
}

// regroup runs s again over its own output, one token per region box.
func regroup(t *testing.T, s Strategy, regions []Region) []Region {
	t.Helper()
	again := make([]Annotation, len(regions))
	for i, r := range regions {
		again[i] = rect("card", int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
	}
	return s.Group(tokensOf(t, again...))
}

// boxSet returns the region boxes in a canonical order.
func boxSet(regions []Region) []Box {
	boxes := make([]Box, len(regions))
	for i, r := range regions {
		boxes[i] = r.Box
	}
	sort.Slice(boxes, func(i, j int) bool {
		a, b := boxes[i], boxes[j]
		if a.Top != b.Top {
			return a.Top < b.Top
		}
		if a.Left != b.Left {
			return a.Left < b.Left
		}
		if a.Bottom != b.Bottom {
			return a.Bottom < b.Bottom
		}
		return a.Right < b.Right
	})
	return boxes
}

func assertSameBoxes(t *testing.T, got, want []Region) {
	t.Helper()
	g, w := boxSet(got), boxSet(want)
	if len(g) != len(w) {
		t.Fatalf("got %d boxes, want %d", len(g), len(w))
	}
	for i := range w {
		assertBox(t, g[i], w[i])
	}
}

// randomPage scatters n word-sized rectangles over an 800x600 page.
func randomPage(seed int64, n int) []Annotation {
	rng := rand.New(rand.NewSource(seed))
	annotations := make([]Annotation, 0, n)
	for i := 0; i < n; i++ {
		x := rng.Intn(800)
		y := rng.Intn(600)
		w := 10 + rng.Intn(60)
		h := 12 + rng.Intn(10)
		annotations = append(annotations, rect("w", x, y, x+w, y+h))
	}
	return annotations
}
