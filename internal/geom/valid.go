package geom

import (
	"fmt"
	"math"

	cgeom "github.com/ctessum/geom"
	gogeom "github.com/twpayne/go-geom"
)

// minRingPositions is the smallest closed ring: a triangle plus the closing
// point.
const minRingPositions = 4

func validatePolygon(p *gogeom.Polygon) error {
	if p.NumLinearRings() == 0 {
		return invalidf("polygon has no rings")
	}
	rings := make([]Ring, p.NumLinearRings())
	for i := range rings {
		rings[i] = toRing(p.LinearRing(i))
		if err := validateRing(rings[i]); err != nil {
			return invalidf("%s: %s", ringName(i), err.(*InvalidGeometryError).Reason)
		}
		if seg, ok := selfIntersection(rings[i]); ok {
			return invalidf("%s self-intersects at segment %d", ringName(i), seg)
		}
	}
	shell := toPolygon(rings[0])
	for i := 1; i < len(rings); i++ {
		for j := 0; j < i; j++ {
			if ringsCross(rings[i], rings[j]) {
				return invalidf("%s crosses %s", ringName(i), ringName(j))
			}
		}
		for _, v := range rings[i] {
			if (cgeom.Point{X: v.X, Y: v.Y}).Within(shell) == cgeom.Outside {
				return invalidf("%s lies outside the exterior ring", ringName(i))
			}
		}
		for j := 1; j < len(rings); j++ {
			if j != i && ringInside(rings[i], rings[j]) {
				return invalidf("%s is nested in %s", ringName(i), ringName(j))
			}
		}
	}
	return nil
}

func ringName(i int) string {
	if i == 0 {
		return "exterior ring"
	}
	return fmt.Sprintf("interior ring %d", i)
}

// ringInside reports whether some vertex of r lies strictly inside other.
func ringInside(r, other Ring) bool {
	poly := toPolygon(other)
	for _, v := range r {
		if (cgeom.Point{X: v.X, Y: v.Y}).Within(poly) == cgeom.Inside {
			return true
		}
	}
	return false
}

// ringsCross reports whether a segment of a properly crosses a segment of b.
// Rings may touch at isolated points.
func ringsCross(a, b Ring) bool {
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if properCross(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func properCross(p1, p2, q1, q2 Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// overlapTolerance is the intersection area, relative to the smaller
// member, below which two members are taken to share only boundary.
const overlapTolerance = 1e-9

// validateMembers rejects multipolygon members whose interiors overlap.
func validateMembers(mp *gogeom.MultiPolygon) error {
	polys := make([]cgeom.Polygon, mp.NumPolygons())
	for i := range polys {
		p := mp.Polygon(i)
		for k := 0; k < p.NumLinearRings(); k++ {
			polys[i] = append(polys[i], toPath(toRing(p.LinearRing(k))))
		}
	}
	for i := range polys {
		for j := i + 1; j < len(polys); j++ {
			if !polys[i].Bounds().Overlaps(polys[j].Bounds()) {
				continue
			}
			shared := polys[i].Intersection(polys[j]).Area()
			if shared > overlapTolerance*math.Min(polys[i].Area(), polys[j].Area()) {
				return invalidf("members %d and %d overlap", i, j)
			}
		}
	}
	return nil
}

func toPath(r Ring) cgeom.Path {
	pts := make(cgeom.Path, len(r))
	for i, p := range r {
		pts[i] = cgeom.Point{X: p.X, Y: p.Y}
	}
	return pts
}

func toPolygon(r Ring) cgeom.Polygon { return cgeom.Polygon{toPath(r)} }

// validateRing checks cardinality, closure, finiteness and area of r.
func validateRing(r Ring) error {
	if len(r) < minRingPositions {
		return invalidf("ring has %d points, need at least %d", len(r), minRingPositions)
	}
	for i, p := range r {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return invalidf("non-finite coordinate at %d", i)
		}
	}
	if r[0] != r[len(r)-1] {
		return invalidf("ring is not closed")
	}
	if ringArea(r) == 0 {
		return invalidf("ring has zero area")
	}
	return nil
}

func ringArea(r Ring) float64 {
	return toPolygon(r).Area()
}

// selfIntersection reports the index of the first segment of r that touches
// or crosses a non-adjacent segment. Repeated consecutive points are ignored.
func selfIntersection(r Ring) (int, bool) {
	pts := make([]Point, 0, len(r))
	for i, p := range r {
		if i > 0 && p == pts[len(pts)-1] {
			continue
		}
		pts = append(pts, p)
	}
	n := len(pts) - 1 // segments
	if n < 3 {
		return 0, false
	}
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[i+1]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // closing segment shares pts[0]
			}
			if segmentsIntersect(a, b, pts[j], pts[j+1]) {
				return i, true
			}
		}
	}
	return 0, false
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	if math.Max(p1.X, p2.X) < math.Min(q1.X, q2.X) || math.Max(q1.X, q2.X) < math.Min(p1.X, p2.X) ||
		math.Max(p1.Y, p2.Y) < math.Min(q1.Y, q2.Y) || math.Max(q1.Y, q2.Y) < math.Min(p1.Y, p2.Y) {
		return false
	}
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) || (d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) || (d4 == 0 && onSegment(p1, p2, q2))
}

func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// Contains reports whether p lies inside or on the boundary of ring r.
func (r Ring) Contains(p Point) bool {
	return cgeom.Point{X: p.X, Y: p.Y}.Within(toPolygon(r)) != cgeom.Outside
}
