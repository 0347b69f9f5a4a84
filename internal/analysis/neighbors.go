package analysis

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// neighborFinder returns, for defect i, every other defect whose center is within
// the proximity limit, in ascending index order.
type neighborFinder interface {
	within(i int) []int
}

// newNeighborFinder picks a k-d tree for large inputs and a plain scan otherwise.
// Both apply the same distance test, so results are identical.
func newNeighborFinder(centers []orb.Point, pixelDensity, proximityMM float64, minIndexed int) neighborFinder {
	scan := &linearScan{centers: centers, pixelDensity: pixelDensity, limit: proximityMM}
	if minIndexed <= 0 || len(centers) < minIndexed {
		return scan
	}
	return newCenterIndex(scan)
}

type linearScan struct {
	centers      []orb.Point
	pixelDensity float64
	limit        float64
}

func (s *linearScan) near(i, j int) bool {
	return planar.Distance(s.centers[i], s.centers[j])/s.pixelDensity <= s.limit
}

func (s *linearScan) within(i int) []int {
	nearby := []int{}
	for j := range s.centers {
		if j != i && s.near(i, j) {
			nearby = append(nearby, j)
		}
	}
	return nearby
}

// centerIndex answers the same query through a k-d tree over defect centers.
type centerIndex struct {
	scan     *linearScan
	tree     *kdtree.Tree
	radiusSq float64
}

func newCenterIndex(scan *linearScan) *centerIndex {
	pts := make(centerPoints, len(scan.centers))
	for i, c := range scan.centers {
		pts[i] = centerPoint{x: c[0], y: c[1], idx: i}
	}

	r := scan.limit * scan.pixelDensity
	return &centerIndex{
		scan: scan,
		tree: kdtree.New(pts, false),
		// widened so rounding never drops a candidate; near() has the final say
		radiusSq: r*r*(1+1e-9) + 1e-9,
	}
}

func (c *centerIndex) within(i int) []int {
	q := centerPoint{x: c.scan.centers[i][0], y: c.scan.centers[i][1], idx: i}
	keeper := kdtree.NewDistKeeper(c.radiusSq)
	c.tree.NearestSet(keeper, q)

	nearby := []int{}
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		j := cd.Comparable.(centerPoint).idx
		if j != i && c.scan.near(i, j) {
			nearby = append(nearby, j)
		}
	}
	sort.Ints(nearby)
	return nearby
}

// centerPoint is a defect center that remembers its position in the defect list,
// since the tree reorders its input.
type centerPoint struct {
	x, y float64
	idx  int
}

func (p centerPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(centerPoint)
	if d == 0 {
		return p.x - q.x
	}
	return p.y - q.y
}

func (p centerPoint) Dims() int { return 2 }

// Distance is squared, matching the keeper radius.
func (p centerPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(centerPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type centerPoints []centerPoint

func (p centerPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p centerPoints) Len() int                       { return len(p) }
func (p centerPoints) Pivot(d kdtree.Dim) int {
	return centerPlane{Dim: d, centerPoints: p}.Pivot()
}
func (p centerPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// centerPlane sorts centers along one dimension for median selection.
type centerPlane struct {
	kdtree.Dim
	centerPoints
}

func (p centerPlane) Less(i, j int) bool {
	return p.coord(i) < p.coord(j)
}

func (p centerPlane) coord(i int) float64 {
	if p.Dim == 0 {
		return p.centerPoints[i].x
	}
	return p.centerPoints[i].y
}

func (p centerPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p centerPlane) Slice(start, end int) kdtree.SortSlicer {
	p.centerPoints = p.centerPoints[start:end]
	return p
}

func (p centerPlane) Swap(i, j int) {
	p.centerPoints[i], p.centerPoints[j] = p.centerPoints[j], p.centerPoints[i]
}
