package grouping

import (
	"fmt"
	"strings"
	"unicode"
)

// Vertex is an integer pixel coordinate.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Annotation is one raw record from a text recognizer.
//
// Vertices are expected clockwise from the top-left corner: left-upper,
// right-upper, right-lower, left-lower.
type Annotation struct {
	Text     string   `json:"text"`
	Vertices []Vertex `json:"vertices"`
}

// Token is a recognized text unit that survived normalization.
//
// ID is the token's position in the normalized list and doubles as its reading
// order.
type Token struct {
	ID       int       `json:"id"`
	Text     string    `json:"text"`
	Vertices [4]Vertex `json:"vertices"`
}

const (
	leftUpper = iota
	rightUpper
	rightLower
	leftLower
)

// Centroid returns the mean of the four vertices.
func (t Token) Centroid() (x, y float64) {
	for _, v := range t.Vertices {
		x += float64(v.X)
		y += float64(v.Y)
	}
	return x / 4, y / 4
}

// Bounds returns the token's box built from the midpoints of its edges: left
// is the midpoint of the left edge, top the midpoint of the top edge, and so
// on. Midpoints are truncated to whole pixels. For skewed quads this hugs the
// text better than the full extent.
func (t Token) Bounds() Box {
	v := t.Vertices
	left := midpoint(v[leftUpper].X, v[leftLower].X)
	right := midpoint(v[rightUpper].X, v[rightLower].X)
	top := midpoint(v[leftUpper].Y, v[rightUpper].Y)
	bottom := midpoint(v[leftLower].Y, v[rightLower].Y)
	return normalizedBox(float64(left), float64(top), float64(right), float64(bottom))
}

// Extent returns the min/max box over all four vertices.
func (t Token) Extent() Box {
	b := Box{
		Left:   float64(t.Vertices[0].X),
		Top:    float64(t.Vertices[0].Y),
		Right:  float64(t.Vertices[0].X),
		Bottom: float64(t.Vertices[0].Y),
	}
	for _, v := range t.Vertices[1:] {
		b = b.Union(Box{Left: float64(v.X), Top: float64(v.Y), Right: float64(v.X), Bottom: float64(v.Y)})
	}
	return b
}

func midpoint(a, b int) int {
	return (a + b) / 2
}

// ValidationError reports a single annotation that could not become a Token.
// It is not fatal: the record is dropped and normalization continues.
type ValidationError struct {
	// Index is the record's position in the raw annotation list.
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("annotation %d (%q): %s", e.Index, e.Text, e.Reason)
}

// ArtifactFilter rejects recognized text that is watermark or scanning noise.
type ArtifactFilter struct {
	// MaxDigits is the largest number of digit characters a token may carry.
	MaxDigits int

	// Denylist holds known watermark strings.
	Denylist []string
}

// IsArtifact reports whether text should be excluded from grouping.
//
// Text is an artifact when it is blank, when it holds more than MaxDigits
// digits, or when it and a denylist entry contain one another. Fragments of a
// watermark ("F." out of "F.Netter") and tokens carrying a watermark with
// trailing punctuation are both caught.
func (f ArtifactFilter) IsArtifact(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	digits := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits > f.MaxDigits {
		return true
	}

	for _, entry := range f.Denylist {
		if entry == "" {
			continue
		}
		if strings.Contains(entry, text) || strings.Contains(text, entry) {
			return true
		}
	}
	return false
}

// NormalizeResult is the output of Normalize.
type NormalizeResult struct {
	Tokens   []Token
	Rejected []ValidationError
	Filtered []string
}

// Normalize converts raw annotations into tokens.
//
// When skipHeader is set the first record, the recognizer's whole-image
// aggregate, is discarded. Records without exactly four vertices are reported
// in Rejected; artifact text is reported in Filtered. Surviving tokens are
// numbered from 0 in input order.
func Normalize(annotations []Annotation, filter ArtifactFilter, skipHeader bool) NormalizeResult {
	var res NormalizeResult

	start := 0
	if skipHeader && len(annotations) > 0 {
		start = 1
	}

	for i := start; i < len(annotations); i++ {
		a := annotations[i]
		if len(a.Vertices) != 4 {
			res.Rejected = append(res.Rejected, ValidationError{
				Index:  i,
				Text:   a.Text,
				Reason: fmt.Sprintf("expected 4 vertices, got %d", len(a.Vertices)),
			})
			continue
		}
		if filter.IsArtifact(a.Text) {
			res.Filtered = append(res.Filtered, a.Text)
			continue
		}

		tok := Token{ID: len(res.Tokens), Text: a.Text}
		copy(tok.Vertices[:], a.Vertices)
		res.Tokens = append(res.Tokens, tok)
	}

	return res
}
