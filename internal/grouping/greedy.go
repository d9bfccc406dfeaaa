package grouping

import "sort"

// GreedyMerge groups tokens with two sorted pairwise passes: words along a
// line first, then lines into blocks. Thresholds adapt to the median token
// height of the input.
type GreedyMerge struct {
	Ratios Ratios

	// RoundThresholds rounds derived thresholds to whole pixels.
	RoundThresholds bool

	// Converge repeats both passes, re-deriving thresholds from the current
	// regions each round, until a round merges nothing. The output is then a
	// fixed point: grouping it again yields the same boxes.
	Converge bool
}

// Name implements Strategy.
func (g GreedyMerge) Name() string { return StrategyGreedy }

// Group implements Strategy. Output regions are ordered by ascending top edge.
//
// Without Converge a single horizontal and vertical pass runs, so the output
// need not be stable: merged blocks raise the median height, and a second run
// over them may merge further.
func (g GreedyMerge) Group(tokens []Token) []Region {
	regions := make([]Region, len(tokens))
	for i, t := range tokens {
		regions[i] = NewRegion(t)
	}
	if len(regions) < 2 {
		return regions
	}

	for round := 0; ; round++ {
		n := len(regions)
		th, _ := ComputeThresholds(regions, g.Ratios, g.RoundThresholds)
		regions = MergeVertically(MergeHorizontally(regions, th), th)
		if !g.Converge {
			return regions
		}
		// The closing round must start from vertical-pass order so a rerun
		// over the output sorts ties the same way.
		if len(regions) == n && round > 0 {
			return regions
		}
	}
}

// MergeHorizontally joins regions that sit on the same text line with a small
// gap between them.
//
// Regions are sorted by left edge. For every surviving region the scan moves
// right: a candidate on another line (bottom edges differ by HeightDiff or
// more) is skipped, a candidate on the same line within WordSpacing is
// absorbed, and the first same-line candidate beyond WordSpacing ends the scan
// because every later candidate starts even further right.
func MergeHorizontally(regions []Region, th Thresholds) []Region {
	sorted := sortedCopy(regions, func(a, b *Region) bool { return a.Left < b.Left })
	return mergePass(sorted, func(card, next *Region) verdict {
		if abs(next.Bottom-card.Bottom) >= th.HeightDiff {
			return skip
		}
		if abs(next.Left-card.Right) < th.WordSpacing {
			return merge
		}
		return stop
	})
}

// MergeVertically joins horizontally overlapping regions stacked within
// LineSpacing of each other.
//
// Regions are sorted by top edge. Candidates without horizontal overlap are
// skipped, overlapping ones within LineSpacing are absorbed, and the first
// overlapping candidate beyond LineSpacing ends the scan.
func MergeVertically(regions []Region, th Thresholds) []Region {
	sorted := sortedCopy(regions, func(a, b *Region) bool { return a.Top < b.Top })
	return mergePass(sorted, func(card, next *Region) verdict {
		if !card.OverlapsHorizontally(next) {
			return skip
		}
		if abs(next.Top-card.Bottom) < th.LineSpacing {
			return merge
		}
		return stop
	})
}

type verdict int

const (
	skip verdict = iota
	merge
	stop
)

// mergePass runs one scan over regions, which must already be sorted. Absorbed
// regions are marked inactive instead of being removed so indices stay stable
// during the scan; the survivors are returned in their sorted order.
func mergePass(regions []Region, decide func(card, next *Region) verdict) []Region {
	active := make([]bool, len(regions))
	for i := range active {
		active[i] = true
	}

	for i := range regions {
		if !active[i] {
			continue
		}
		card := &regions[i]
	scan:
		for j := i + 1; j < len(regions); j++ {
			if !active[j] {
				continue
			}
			next := &regions[j]
			switch decide(card, next) {
			case merge:
				card.Absorb(next)
				active[j] = false
			case stop:
				break scan
			}
		}
	}

	out := make([]Region, 0, len(regions))
	for i := range regions {
		if active[i] {
			out = append(out, regions[i])
		}
	}
	return out
}

func sortedCopy(regions []Region, less func(a, b *Region) bool) []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
