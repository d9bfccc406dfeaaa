package grouping

import (
	"math"
	"sort"
)

// HierarchicalCluster groups tokens by single-linkage agglomerative clustering
// over an anisotropic distance between token centroids, cutting the dendrogram
// at DistanceThreshold.
//
// It copes with layouts that are not row or column aligned, at O(n²) memory
// for the distance matrix.
type HierarchicalCluster struct {
	HorizontalWeight  float64
	VerticalWeight    float64
	DistanceThreshold float64

	// Converge re-clusters the resulting regions by their box centers until
	// no two of them are closer than DistanceThreshold. A merged box's center
	// can move within reach of a cluster it was cut from, so without it a
	// second run over the output may join further.
	Converge bool
}

// Name implements Strategy.
func (h HierarchicalCluster) Name() string { return StrategyHierarchical }

// Group implements Strategy. Each region's box is the full vertex extent of its
// members. Regions are ordered by their lowest member ID.
func (h HierarchicalCluster) Group(tokens []Token) []Region {
	if len(tokens) == 0 {
		return nil
	}

	regions := make([]Region, len(tokens))
	centers := make([]point, len(tokens))
	for i, t := range tokens {
		regions[i] = Region{Box: t.Extent(), Members: []int{t.ID}}
		centers[i].x, centers[i].y = t.Centroid()
	}

	for round := 0; ; round++ {
		dist := pointMatrix(centers, h.HorizontalWeight, h.VerticalWeight)
		labels := CutTree(SingleLinkage(dist), len(regions), h.DistanceThreshold)
		joined := joinByLabel(regions, labels)
		if !h.Converge {
			return joined
		}
		// Token centroids are vertex means, which differ from box centers on
		// skewed quads, so the closing round must measure box centers.
		if len(joined) == len(regions) && round > 0 {
			return joined
		}

		regions = joined
		centers = centers[:len(regions)]
		for i, r := range regions {
			centers[i] = point{x: (r.Left + r.Right) / 2, y: (r.Top + r.Bottom) / 2}
		}
	}
}

// joinByLabel folds regions sharing a label into one. Labels are numbered in
// order of first appearance, which keeps the output ordered by lowest member.
func joinByLabel(regions []Region, labels []int) []Region {
	var out []Region
	for i, l := range labels {
		if l == len(out) {
			out = append(out, Region{Box: regions[i].Box, Members: regions[i].Members})
			continue
		}
		out[l].Absorb(&regions[i])
	}
	return out
}

type point struct{ x, y float64 }

// WeightedDistance is the Euclidean distance between token centroids after
// scaling x by hw and y by vw.
func WeightedDistance(a, b Token, hw, vw float64) float64 {
	var p, q point
	p.x, p.y = a.Centroid()
	q.x, q.y = b.Centroid()
	return weighted(p, q, hw, vw)
}

func weighted(p, q point, hw, vw float64) float64 {
	return math.Hypot((p.x-q.x)*hw, (p.y-q.y)*vw)
}

// DistanceMatrix returns the full symmetric matrix of weighted distances.
func DistanceMatrix(tokens []Token, hw, vw float64) [][]float64 {
	centers := make([]point, len(tokens))
	for i, t := range tokens {
		centers[i].x, centers[i].y = t.Centroid()
	}
	return pointMatrix(centers, hw, vw)
}

func pointMatrix(centers []point, hw, vw float64) [][]float64 {
	n := len(centers)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := weighted(centers[i], centers[j], hw, vw)
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// Merge is one step of a dendrogram: the clusters holding points A and B join
// at Distance.
type Merge struct {
	A, B     int
	Distance float64
}

// SingleLinkage builds the single-linkage dendrogram of a distance matrix.
//
// Single linkage merges are exactly the edges of a minimum spanning tree
// taken in ascending weight, so the tree is grown with Prim's algorithm in
// O(n²) and the edges are then sorted. Ties keep discovery order.
func SingleLinkage(dist [][]float64) []Merge {
	n := len(dist)
	if n < 2 {
		return nil
	}

	inTree := make([]bool, n)
	best := make([]float64, n)
	parent := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
		parent[i] = -1
	}

	merges := make([]Merge, 0, n-1)
	current := 0
	inTree[current] = true
	for step := 1; step < n; step++ {
		for j := 0; j < n; j++ {
			if !inTree[j] && dist[current][j] < best[j] {
				best[j] = dist[current][j]
				parent[j] = current
			}
		}

		next := -1
		for j := 0; j < n; j++ {
			if !inTree[j] && (next < 0 || best[j] < best[next]) {
				next = j
			}
		}

		inTree[next] = true
		merges = append(merges, Merge{A: parent[next], B: next, Distance: best[next]})
		current = next
	}

	sort.SliceStable(merges, func(i, j int) bool { return merges[i].Distance < merges[j].Distance })
	return merges
}

// CutTree assigns flat cluster labels to n points by applying every merge whose
// distance is strictly below threshold. Labels are numbered from 0 in order of
// each cluster's lowest point index.
func CutTree(merges []Merge, n int, threshold float64) []int {
	uf := newUnionFind(n)
	for _, m := range merges {
		if m.Distance < threshold {
			uf.union(m.A, m.B)
		}
	}

	labels := make([]int, n)
	ids := make(map[int]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		labels[i] = id
	}
	return labels
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
