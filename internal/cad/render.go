package cad

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"parcelcad/internal/geom"
)

// minRenderPoints is the fewest points a drawable ring may have.
const minRenderPoints = 3

// Renderer submits geometry rings to a Host.
type Renderer struct {
	Host Host
	// StopOnError aborts a multi-ring render at the first failed ring.
	// By default every ring is attempted.
	StopOnError bool
	Log         logrus.FieldLogger
}

// RingFailure records one ring that could not be drawn.
type RingFailure struct {
	Index int
	Err   error
}

// RenderResult summarises a Render call.
type RenderResult struct {
	Style    Style
	Rings    int
	Drawn    int
	Failures []RingFailure
}

// OK reports whether every ring was drawn.
func (r RenderResult) OK() bool {
	return r.Rings > 0 && r.Drawn == r.Rings
}

// Err joins the ring failures, or returns nil when there were none.
func (r RenderResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("ring %d: %w", f.Index, f.Err))
	}
	return errors.Join(errs...)
}

// RenderRing draws a single ring as a closed polyline in the color of style.
func (r *Renderer) RenderRing(ctx context.Context, ring geom.Ring, style Style) error {
	coords, err := geom.Flatten(ring)
	if err != nil {
		return err
	}
	if len(ring) < minRenderPoints {
		return &geom.InvalidGeometryError{Reason: fmt.Sprintf("ring has %d points, need at least %d", len(ring), minRenderPoints)}
	}
	if err := r.Host.AddClosedPolyline(ctx, coords, style.Color()); err != nil {
		var herr *HostError
		if errors.As(err, &herr) {
			return err
		}
		return &HostError{Msg: "adding polyline", Err: err}
	}
	return nil
}

// Render draws every ring of g. Polygons yield one ring, multipolygons one
// ring per member in decode order.
func (r *Renderer) Render(ctx context.Context, g geom.Geometry, style Style) RenderResult {
	var rings []geom.Ring
	switch g := g.(type) {
	case geom.Polygon:
		rings = []geom.Ring{g.Exterior}
	case geom.MultiPolygon:
		rings = g.Members
	}
	res := RenderResult{Style: style, Rings: len(rings)}
	log := r.logger().WithFields(logrus.Fields{"style": style, "kind": g.Kind()})
	for i, ring := range rings {
		if err := r.RenderRing(ctx, ring, style); err != nil {
			log.WithError(err).WithField("ring", i).Warn("ring not drawn")
			res.Failures = append(res.Failures, RingFailure{Index: i, Err: err})
			if r.StopOnError {
				break
			}
			continue
		}
		res.Drawn++
	}
	log.WithFields(logrus.Fields{"rings": res.Rings, "drawn": res.Drawn}).Debug("render finished")
	return res
}

func (r *Renderer) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}
