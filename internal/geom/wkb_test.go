package geom

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/wkbhex"
)

func square(x0, y0, size float64) []gogeom.Coord {
	return []gogeom.Coord{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0},
	}
}

func encode(t *testing.T, g gogeom.T) string {
	t.Helper()
	s, err := wkbhex.Encode(g, binary.LittleEndian)
	require.NoError(t, err)
	return s
}

func TestDecodeHexPolygon(t *testing.T) {
	ring := square(565000, 244000, 50)
	payload := encode(t, gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{ring}))

	g, err := DecodeHex(payload)
	require.NoError(t, err)

	p, ok := g.(Polygon)
	require.True(t, ok, "got %T", g)
	require.Len(t, p.Exterior, len(ring))
	for i, c := range ring {
		assert.Equal(t, Point{X: c[0], Y: c[1]}, p.Exterior[i])
	}

	flat, err := Flatten(p.Exterior)
	require.NoError(t, err)
	assert.Len(t, flat, 2*len(ring))
	assert.Equal(t, []float64{565000, 244000, 565050, 244000}, flat[:4])
}

func TestDecodeHexEWKBWithSRID(t *testing.T) {
	poly := gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{square(0, 0, 1)}).SetSRID(2180)
	payload, err := ewkbhex.Encode(poly, binary.BigEndian)
	require.NoError(t, err)

	g, err := DecodeHex(payload + "\r\n")
	require.NoError(t, err)
	assert.Equal(t, "Polygon", g.Kind())
}

func TestDecodeHexMultiPolygon(t *testing.T) {
	mp := gogeom.NewMultiPolygon(gogeom.XY).MustSetCoords([][][]gogeom.Coord{
		{square(0, 0, 1)},
		{square(5, 5, 2)},
		{square(10, 0, 3)},
	})

	g, err := DecodeHex(encode(t, mp))
	require.NoError(t, err)

	m, ok := g.(MultiPolygon)
	require.True(t, ok, "got %T", g)
	require.Len(t, m.Rings(), 3)
	for i, r := range m.Rings() {
		flat, err := Flatten(r)
		require.NoError(t, err, "ring %d", i)
		assert.Len(t, flat, 10)
	}
	assert.Equal(t, Point{X: 5, Y: 5}, m.Members[1][0])
}

func TestDecodeHexDropsHoles(t *testing.T) {
	outer := square(0, 0, 10)
	hole := []gogeom.Coord{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}}
	payload := encode(t, gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{outer, hole}))

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	g, err := Decoder{Log: logger}.Decode(payload)
	require.NoError(t, err)
	require.Len(t, g.Rings(), 1)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, 1, e.Data["holes"])
		}
	}
	assert.True(t, warned, "expected a warning about dropped holes")
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestDecodeHexUnsupportedKind(t *testing.T) {
	tests := []struct {
		name string
		g    gogeom.T
		kind string
	}{
		{"point", gogeom.NewPoint(gogeom.XY).MustSetCoords(gogeom.Coord{1, 2}), "Point"},
		{"linestring", gogeom.NewLineString(gogeom.XY).MustSetCoords([]gogeom.Coord{{0, 0}, {1, 1}}), "LineString"},
		{"multipoint", gogeom.NewMultiPoint(gogeom.XY).MustSetCoords([]gogeom.Coord{{0, 0}, {1, 1}}), "MultiPoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHex(encode(t, tt.g))
			require.ErrorIs(t, err, ErrUnsupportedGeometryKind)
			var kerr *UnsupportedKindError
			require.True(t, errors.As(err, &kerr))
			assert.Equal(t, tt.kind, kerr.Kind)
		})
	}
}

func TestDecodeHexInvalid(t *testing.T) {
	tests := []struct {
		name   string
		coords [][]gogeom.Coord
		reason string
	}{
		{
			name:   "self-intersecting",
			coords: [][]gogeom.Coord{{{0, 0}, {10, 0}, {10, 10}, {4, -2}, {0, 10}, {0, 0}}},
			reason: "self-intersects",
		},
		{
			name:   "zero area",
			coords: [][]gogeom.Coord{{{0, 0}, {1, 1}, {2, 2}, {0, 0}}},
			reason: "zero area",
		},
		{
			name:   "too few points",
			coords: [][]gogeom.Coord{{{0, 0}, {1, 0}, {0, 0}}},
			reason: "3 points",
		},
		{
			name:   "open ring",
			coords: [][]gogeom.Coord{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
			reason: "not closed",
		},
		{
			name:   "hole outside shell",
			coords: [][]gogeom.Coord{square(0, 0, 10), square(20, 20, 2)},
			reason: "interior ring 1 lies outside the exterior ring",
		},
		{
			name:   "self-intersecting hole",
			coords: [][]gogeom.Coord{square(0, 0, 10), {{2, 2}, {6, 4}, {6, 2}, {2, 5}, {2, 2}}},
			reason: "interior ring 1 self-intersects",
		},
		{
			name:   "hole crossing shell",
			coords: [][]gogeom.Coord{square(0, 0, 10), {{8, 2}, {12, 2}, {12, 4}, {8, 4}, {8, 2}}},
			reason: "interior ring 1 crosses exterior ring",
		},
		{
			name:   "nested holes",
			coords: [][]gogeom.Coord{square(0, 0, 10), square(1, 1, 8), square(3, 3, 2)},
			reason: "interior ring 2 is nested in interior ring 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// go-geom does not close rings itself, so raw coords go straight
			// into the payload.
			var ends []int
			n := 0
			for _, r := range tt.coords {
				n += 2 * len(r)
				ends = append(ends, n)
			}
			p := gogeom.NewPolygonFlat(gogeom.XY, flat(tt.coords), ends)
			_, err := DecodeHex(encode(t, p))
			require.ErrorIs(t, err, ErrInvalidGeometry)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestDecodeHexHoleTouchingShell(t *testing.T) {
	hole := []gogeom.Coord{{0, 5}, {3, 4}, {3, 6}, {0, 5}}
	p := gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{square(0, 0, 10), hole})
	g, err := DecodeHex(encode(t, p))
	require.NoError(t, err)
	assert.Len(t, g.Rings(), 1)
}

func TestDecodeHexMultiPolygonMembers(t *testing.T) {
	overlapping := gogeom.NewMultiPolygon(gogeom.XY).MustSetCoords([][][]gogeom.Coord{
		{square(0, 0, 10)},
		{square(20, 0, 5)},
		{square(5, 5, 10)},
	})
	_, err := DecodeHex(encode(t, overlapping))
	require.ErrorIs(t, err, ErrInvalidGeometry)
	assert.Contains(t, err.Error(), "members 0 and 2 overlap")

	adjacent := gogeom.NewMultiPolygon(gogeom.XY).MustSetCoords([][][]gogeom.Coord{
		{square(0, 0, 10)},
		{square(10, 0, 10)},
	})
	g, err := DecodeHex(encode(t, adjacent))
	require.NoError(t, err)
	assert.Len(t, g.Rings(), 2)

	// a member inside another member's hole does not overlap it
	island := gogeom.NewMultiPolygon(gogeom.XY).MustSetCoords([][][]gogeom.Coord{
		{square(0, 0, 10), square(2, 2, 6)},
		{square(4, 4, 2)},
	})
	g, err = DecodeHex(encode(t, island))
	require.NoError(t, err)
	assert.Len(t, g.Rings(), 2)
}

func TestDecodeHexBadPayload(t *testing.T) {
	for _, s := range []string{"", "zz", "0103"} {
		_, err := DecodeHex(s)
		var derr *DecodeError
		assert.True(t, errors.As(err, &derr), "payload %q: %v", s, err)
	}
}

func TestFlattenEmptyRing(t *testing.T) {
	_, err := Flatten(nil)
	assert.ErrorIs(t, err, ErrEmptyRing)
}

func TestRingContains(t *testing.T) {
	r := Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	assert.True(t, r.Contains(Point{X: 5, Y: 5}))
	assert.True(t, r.Contains(Point{X: 0, Y: 5}))
	assert.False(t, r.Contains(Point{X: 11, Y: 5}))
}

func TestWKT(t *testing.T) {
	mp := MultiPolygon{Members: []Ring{
		{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
		{{2.5, 2}, {3, 2}, {3, 3}, {2.5, 2}},
	}}
	assert.Equal(t, "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((2.5 2, 3 2, 3 3, 2.5 2)))", WKT(mp))
	assert.Equal(t, "POLYGON ((0 0, 1 0, 1 1, 0 0))", WKT(Polygon{Exterior: mp.Members[0]}))
}

func TestBounds(t *testing.T) {
	mp := MultiPolygon{Members: []Ring{
		{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
		{{-2, 5}, {3, 2}, {3, 3}, {-2, 5}},
	}}
	assert.Equal(t, BBox{MinX: -2, MinY: 0, MaxX: 3, MaxY: 5}, Bounds(mp))
}

func flat(rings [][]gogeom.Coord) []float64 {
	var out []float64
	for _, r := range rings {
		for _, c := range r {
			out = append(out, c...)
		}
	}
	return out
}
