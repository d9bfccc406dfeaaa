package grouping

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Box is an axis-aligned rectangle in pixel space.
//
// It encodes to JSON as [[left, top], [right, bottom]].
type Box struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func normalizedBox(left, top, right, bottom float64) Box {
	if left > right {
		left, right = right, left
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	return Box{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Left:   min(b.Left, o.Left),
		Top:    min(b.Top, o.Top),
		Right:  max(b.Right, o.Right),
		Bottom: max(b.Bottom, o.Bottom),
	}
}

// Width returns Right - Left.
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns Bottom - Top.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// MarshalJSON implements json.Marshaler.
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([2][2]float64{{b.Left, b.Top}, {b.Right, b.Bottom}})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Box) UnmarshalJSON(data []byte) error {
	var corners [][]float64
	if err := json.Unmarshal(data, &corners); err != nil {
		return fmt.Errorf("box must be [[left, top], [right, bottom]]: %w", err)
	}
	if len(corners) != 2 || len(corners[0]) != 2 || len(corners[1]) != 2 {
		return fmt.Errorf("box must be [[left, top], [right, bottom]]")
	}
	*b = normalizedBox(corners[0][0], corners[0][1], corners[1][0], corners[1][1])
	return nil
}

// Region is a merged box together with the tokens it stands for.
//
// Left <= Right and Top <= Bottom hold at all times.
type Region struct {
	Box

	// Members holds the IDs of the tokens this region covers, ascending.
	Members []int
}

// NewRegion builds a single-token region from the token's edge-midpoint box.
func NewRegion(t Token) Region {
	return Region{Box: t.Bounds(), Members: []int{t.ID}}
}

// Absorb grows r to the union of both boxes and takes over o's members.
func (r *Region) Absorb(o *Region) {
	r.Box = r.Box.Union(o.Box)
	r.Members = mergeMembers(r.Members, o.Members)
}

// OverlapsHorizontally reports whether the horizontal extents of r and o share
// a non-empty interval.
func (r *Region) OverlapsHorizontally(o *Region) bool {
	return max(r.Left, o.Left) < min(r.Right, o.Right)
}

// mergeMembers merges two ascending ID lists.
func mergeMembers(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Ints(out)
	return out
}

// MarshalJSON implements json.Marshaler. It is needed because the embedded
// Box's encoder would otherwise be promoted and drop Members.
func (r Region) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Box     Box   `json:"box"`
		Members []int `json:"members"`
	}{r.Box, r.Members})
}
