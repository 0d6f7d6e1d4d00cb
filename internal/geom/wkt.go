package geom

import (
	"strconv"
	"strings"
)

// WKT formats g as well-known text. Only the rings held by g are written,
// so polygons appear without their holes.
func WKT(g Geometry) string {
	var b strings.Builder
	switch g := g.(type) {
	case Polygon:
		b.WriteString("POLYGON (")
		writeRing(&b, g.Exterior)
		b.WriteString(")")
	case MultiPolygon:
		b.WriteString("MULTIPOLYGON (")
		for i, r := range g.Members {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(")
			writeRing(&b, r)
			b.WriteString(")")
		}
		b.WriteString(")")
	}
	return b.String()
}

func writeRing(b *strings.Builder, r Ring) {
	b.WriteString("(")
	for i, p := range r {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	b.WriteString(")")
}
