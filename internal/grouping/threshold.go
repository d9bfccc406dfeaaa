package grouping

import (
	"math"
	"sort"
)

// Thresholds are the pixel distances the greedy merger compares against.
type Thresholds struct {
	// WordSpacing is the largest horizontal gap between words of one line.
	WordSpacing float64 `json:"word_spacing"`

	// HeightDiff is the largest bottom-edge difference for two regions to
	// count as the same text line.
	HeightDiff float64 `json:"height_diff"`

	// LineSpacing is the largest vertical gap between consecutive lines.
	LineSpacing float64 `json:"line_spacing"`
}

// Ratios scale the median region height into Thresholds.
type Ratios struct {
	Horizontal float64 `toml:"horizontal_ratio" json:"horizontal_ratio"`
	Vertical   float64 `toml:"vertical_ratio" json:"vertical_ratio"`
	HeightDiff float64 `toml:"height_diff_ratio" json:"height_diff_ratio"`
}

// MedianHeight returns the height of the element at len/2 after sorting by
// height. For even counts that is the upper-middle element. ok is false when
// regions is empty.
func MedianHeight(regions []Region) (h float64, ok bool) {
	if len(regions) == 0 {
		return 0, false
	}
	heights := make([]float64, len(regions))
	for i := range regions {
		heights[i] = regions[i].Height()
	}
	sort.Float64s(heights)
	return heights[len(heights)/2], true
}

// ComputeThresholds derives merge thresholds from the median region height.
//
// With round set every threshold is rounded half-to-even to a whole pixel.
// ok is false for an empty region list; callers must not run merge passes then.
func ComputeThresholds(regions []Region, ratios Ratios, round bool) (Thresholds, bool) {
	h, ok := MedianHeight(regions)
	if !ok {
		return Thresholds{}, false
	}

	scale := func(ratio float64) float64 {
		v := ratio * h
		if round {
			v = math.RoundToEven(v)
		}
		return v
	}

	return Thresholds{
		WordSpacing: scale(ratios.Horizontal),
		HeightDiff:  scale(ratios.HeightDiff),
		LineSpacing: scale(ratios.Vertical),
	}, true
}
