package geom

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

// Decoder turns registry payloads into geometries and logs what it
// extracted.
type Decoder struct {
	Log logrus.FieldLogger
}

// DecodeHex parses hex encoded WKB or EWKB into a Geometry. Only Polygon and
// MultiPolygon payloads are accepted. Interior rings are dropped.
func DecodeHex(s string) (Geometry, error) {
	g, _, err := decodeHex(s)
	return g, err
}

// Decode is DecodeHex with diagnostics: the extracted rings are logged at
// debug level and dropped interior rings produce a warning.
func (d Decoder) Decode(s string) (Geometry, error) {
	g, holes, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	fields := logrus.Fields{"kind": g.Kind(), "rings": len(g.Rings())}
	if holes > 0 {
		log.WithFields(fields).WithField("holes", holes).Warn("interior rings are not rendered")
	}
	log.WithFields(fields).Debugf("extracted coordinates: %s", WKT(g))
	return g, nil
}

func decodeHex(s string) (Geometry, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, 0, &DecodeError{Err: fmt.Errorf("empty payload")}
	}
	t, err := ewkbhex.Decode(s)
	if err != nil {
		return nil, 0, &DecodeError{Err: err}
	}
	switch t := t.(type) {
	case *gogeom.Polygon:
		if err := validatePolygon(t); err != nil {
			return nil, 0, err
		}
		return Polygon{Exterior: exterior(t)}, t.NumLinearRings() - 1, nil
	case *gogeom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return nil, 0, invalidf("multipolygon has no members")
		}
		mp := MultiPolygon{Members: make([]Ring, 0, t.NumPolygons())}
		holes := 0
		for i := 0; i < t.NumPolygons(); i++ {
			p := t.Polygon(i)
			if err := validatePolygon(p); err != nil {
				return nil, 0, fmt.Errorf("member %d: %w", i, err)
			}
			mp.Members = append(mp.Members, exterior(p))
			holes += p.NumLinearRings() - 1
		}
		if err := validateMembers(t); err != nil {
			return nil, 0, err
		}
		return mp, holes, nil
	default:
		return nil, 0, &UnsupportedKindError{Kind: kindName(t)}
	}
}

func exterior(p *gogeom.Polygon) Ring {
	return toRing(p.LinearRing(0))
}

func toRing(lr *gogeom.LinearRing) Ring {
	r := make(Ring, 0, lr.NumCoords())
	for _, c := range lr.Coords() {
		r = append(r, Point{X: c[0], Y: c[1]})
	}
	return r
}

func kindName(t gogeom.T) string {
	switch t.(type) {
	case *gogeom.Point:
		return "Point"
	case *gogeom.MultiPoint:
		return "MultiPoint"
	case *gogeom.LineString:
		return "LineString"
	case *gogeom.MultiLineString:
		return "MultiLineString"
	case *gogeom.LinearRing:
		return "LinearRing"
	case *gogeom.GeometryCollection:
		return "GeometryCollection"
	default:
		return fmt.Sprintf("%T", t)
	}
}
