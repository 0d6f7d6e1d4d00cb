// Package preview is an in-process drawing host. It records the polylines a
// render submits and rasterises them onto a braille terminal canvas.
package preview

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"parcelcad/internal/cad"
	"parcelcad/internal/geom"
)

// Polyline is one closed polyline received by the canvas.
type Polyline struct {
	Coords []float64
	Color  cad.Color
}

// Viewport zooms around the drawing centre and pans in cells.
type Viewport struct {
	Zoom    float64
	OffsetX int
	OffsetY int
}

// DefaultViewport shows the whole drawing.
var DefaultViewport = Viewport{Zoom: 1}

var palette = map[cad.Color]lipgloss.Color{
	cad.Red:   lipgloss.Color("#EF4444"),
	cad.Green: lipgloss.Color("#22C55E"),
}

var defaultInk = lipgloss.Color("#E6E6E6")

// Canvas implements cad.Host. It is safe for concurrent use.
type Canvas struct {
	mu    sync.Mutex
	lines []Polyline
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{}
}

func (c *Canvas) AddClosedPolyline(ctx context.Context, coords []float64, color cad.Color) error {
	if err := ctx.Err(); err != nil {
		return &cad.HostError{Msg: "canceled", Err: err}
	}
	if len(coords) < 2 || len(coords)%2 != 0 {
		return &cad.HostError{Msg: "coordinates must be x,y pairs"}
	}
	cp := make([]float64, len(coords))
	copy(cp, coords)
	c.mu.Lock()
	c.lines = append(c.lines, Polyline{Coords: cp, Color: color})
	c.mu.Unlock()
	return nil
}

// Polylines returns a copy of everything drawn so far.
func (c *Canvas) Polylines() []Polyline {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Polyline, len(c.lines))
	copy(out, c.lines)
	return out
}

// Reset clears the drawing.
func (c *Canvas) Reset() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Bounds returns the extent of the drawing and false when it is empty.
func (c *Canvas) Bounds() (geom.BBox, bool) {
	return bounds(c.Polylines())
}

func bounds(lines []Polyline) (geom.BBox, bool) {
	var bb geom.BBox
	n := 0
	for _, l := range lines {
		for i := 0; i+1 < len(l.Coords); i += 2 {
			bb = bb.Extend(geom.Point{X: l.Coords[i], Y: l.Coords[i+1]}, n == 0)
			n++
		}
	}
	return bb, n > 0
}

// Lines rasterises the drawing into h rows of w braille cells, without
// color.
func (c *Canvas) Lines(w, h int, vp Viewport) []string {
	return c.raster(w, h, vp).toLines()
}

// Render rasterises the drawing into a w x h block colored by polyline
// color.
func (c *Canvas) Render(w, h int, vp Viewport) string {
	br := c.raster(w, h, vp)
	rows := make([]string, br.h)
	for y := 0; y < br.h; y++ {
		var sb strings.Builder
		for x := 0; x < br.w; x++ {
			r := br.cell(x, y)
			if r == ' ' {
				sb.WriteRune(r)
				continue
			}
			ink, ok := palette[br.color[y][x]]
			if !ok {
				ink = defaultInk
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(ink).Render(string(r)))
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}

func (c *Canvas) raster(w, h int, vp Viewport) *brailleBuf {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	br := newBrailleBuf(w, h)
	lines := c.Polylines()
	bb, ok := bounds(lines)
	if !ok {
		return br
	}
	pr := newProjection(bb, w, h, vp)
	for _, l := range lines {
		n := len(l.Coords) / 2
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			x0, y0 := pr.micro(l.Coords[2*i], l.Coords[2*i+1])
			x1, y1 := pr.micro(l.Coords[2*j], l.Coords[2*j+1])
			br.drawLineMicro(x0, y0, x1, y1, l.Color)
		}
	}
	return br
}

// projection maps drawing units onto the 2x4 microgrid, keeping the aspect
// ratio and centring the drawing.
type projection struct {
	cx, cy float64
	scale  float64
	midX   float64
	midY   float64
	offX   int
	offY   int
}

func newProjection(bb geom.BBox, w, h int, vp Viewport) projection {
	wMic := float64(w*2 - 1)
	hMic := float64(h*4 - 1)
	scale := math.Inf(1)
	if dx := bb.MaxX - bb.MinX; dx > 0 {
		scale = wMic / dx
	}
	if dy := bb.MaxY - bb.MinY; dy > 0 {
		scale = math.Min(scale, hMic/dy)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return projection{
		cx:    (bb.MinX + bb.MaxX) / 2,
		cy:    (bb.MinY + bb.MaxY) / 2,
		scale: scale * zoom,
		midX:  wMic / 2,
		midY:  hMic / 2,
		offX:  vp.OffsetX * 2,
		offY:  vp.OffsetY * 4,
	}
}

func (p projection) micro(x, y float64) (int, int) {
	sx := int(math.Round((x-p.cx)*p.scale+p.midX)) + p.offX
	sy := int(math.Round((p.cy-y)*p.scale+p.midY)) + p.offY
	return sx, sy
}
