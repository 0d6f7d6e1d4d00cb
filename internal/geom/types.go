package geom

// Point is a coordinate pair in the source CRS (EPSG:2180, metres).
type Point struct {
	X float64
	Y float64
}

// Ring is an ordered point sequence bounding a polygon. Rings coming out of
// the decoder are closed (first point equals last).
type Ring []Point

// Geometry is either a Polygon or a MultiPolygon.
type Geometry interface {
	// Kind returns the WKB geometry type name.
	Kind() string
	// Rings returns the exterior rings to render, in decode order.
	Rings() []Ring
	isGeometry()
}

// Polygon holds the exterior ring of a single polygon.
type Polygon struct {
	Exterior Ring
}

// MultiPolygon holds the exterior ring of every member polygon.
type MultiPolygon struct {
	Members []Ring
}

func (Polygon) Kind() string      { return "Polygon" }
func (MultiPolygon) Kind() string { return "MultiPolygon" }

func (p Polygon) Rings() []Ring       { return []Ring{p.Exterior} }
func (mp MultiPolygon) Rings() []Ring { return mp.Members }

func (Polygon) isGeometry()      {}
func (MultiPolygon) isGeometry() {}

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Extend grows b to cover p. A zero BBox is treated as empty only when empty
// is true.
func (b BBox) Extend(p Point, empty bool) BBox {
	if empty {
		return BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	}
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
	return b
}

// Valid reports whether the box has a positive extent on both axes.
func (b BBox) Valid() bool {
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// Bounds returns the bounding box of all rings of g.
func Bounds(g Geometry) BBox {
	var bb BBox
	n := 0
	for _, r := range g.Rings() {
		for _, p := range r {
			bb = bb.Extend(p, n == 0)
			n++
		}
	}
	return bb
}
