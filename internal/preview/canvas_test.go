package preview

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcelcad/internal/cad"
)

var square = []float64{0, 0, 10, 0, 10, 10, 0, 10, 0, 0}

func cellAt(lines []string, x, y int) rune {
	return []rune(lines[y])[x]
}

func TestCanvasRecords(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, c.AddClosedPolyline(context.Background(), square, cad.Red))
	require.NoError(t, c.AddClosedPolyline(context.Background(), square, cad.Green))

	got := c.Polylines()
	require.Len(t, got, 2)
	assert.Equal(t, cad.Red, got[0].Color)
	assert.Equal(t, cad.Green, got[1].Color)
	assert.Equal(t, square, got[0].Coords)

	bb, ok := c.Bounds()
	require.True(t, ok)
	assert.Equal(t, 10.0, bb.MaxX)

	c.Reset()
	assert.Empty(t, c.Polylines())
	_, ok = c.Bounds()
	assert.False(t, ok)
}

func TestCanvasRejects(t *testing.T) {
	c := NewCanvas()
	err := c.AddClosedPolyline(context.Background(), []float64{1, 2, 3}, cad.Red)
	assert.ErrorIs(t, err, cad.ErrDrawHost)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.AddClosedPolyline(ctx, square, cad.Red)
	assert.ErrorIs(t, err, cad.ErrDrawHost)
	assert.Empty(t, c.Polylines())
}

func TestCanvasCopiesInput(t *testing.T) {
	c := NewCanvas()
	in := append([]float64(nil), square...)
	require.NoError(t, c.AddClosedPolyline(context.Background(), in, cad.Red))
	in[0] = 99
	assert.Equal(t, 0.0, c.Polylines()[0].Coords[0])
}

func TestLinesEmpty(t *testing.T) {
	lines := NewCanvas().Lines(4, 2, DefaultViewport)
	assert.Equal(t, []string{"    ", "    "}, lines)
}

func TestLinesSquare(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, c.AddClosedPolyline(context.Background(), square, cad.Red))

	lines := c.Lines(6, 3, DefaultViewport)
	require.Len(t, lines, 3)
	// top left corner is the first dot of the first cell
	assert.NotEqual(t, ' ', cellAt(lines, 0, 0))
	assert.NotZero(t, (cellAt(lines, 0, 0)-0x2800)&0x01)
	assert.NotEqual(t, ' ', cellAt(lines, 5, 2))
	assert.Equal(t, ' ', cellAt(lines, 2, 1))
	assert.Equal(t, ' ', cellAt(lines, 3, 1))
	for _, l := range lines {
		assert.Equal(t, 6, len([]rune(l)))
	}
}

func TestLinesViewport(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, c.AddClosedPolyline(context.Background(), square, cad.Green))

	zoomed := c.Lines(6, 3, Viewport{Zoom: 0.5})
	assert.Equal(t, ' ', cellAt(zoomed, 0, 0))
	assert.NotEmpty(t, strings.TrimSpace(strings.Join(zoomed, "")))

	panned := c.Lines(6, 3, Viewport{Zoom: 1, OffsetX: 1})
	assert.Equal(t, ' ', cellAt(panned, 0, 0))
	assert.NotEqual(t, ' ', cellAt(panned, 1, 0))
}

func TestRenderKeepsShape(t *testing.T) {
	c := NewCanvas()
	require.NoError(t, c.AddClosedPolyline(context.Background(), square, cad.Red))
	out := c.Render(6, 3, DefaultViewport)
	assert.Len(t, strings.Split(out, "\n"), 3)
}

func TestCanvasConcurrent(t *testing.T) {
	c := NewCanvas()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.AddClosedPolyline(context.Background(), square, cad.Red)
			_ = c.Lines(4, 2, DefaultViewport)
		}()
	}
	wg.Wait()
	assert.Len(t, c.Polylines(), 8)
}
