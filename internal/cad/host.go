// Package cad draws decoded geometries in a CAD drawing host as closed
// polylines.
package cad

import (
	"context"
	"errors"
	"fmt"
)

// Color is an AutoCAD Color Index value.
type Color int

const (
	Red   Color = 1
	Green Color = 3
)

// Style selects how an entity class is drawn.
type Style int

const (
	StyleParcel Style = iota + 1
	StyleCommune
)

// Color returns the palette entry for s.
func (s Style) Color() Color {
	switch s {
	case StyleParcel:
		return Red
	case StyleCommune:
		return Green
	}
	return 0
}

func (s Style) String() string {
	switch s {
	case StyleParcel:
		return "parcel"
	case StyleCommune:
		return "commune"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Host is a drawing host able to add closed polylines to its drawing space.
type Host interface {
	// AddClosedPolyline adds one polyline through the interleaved
	// coordinates [x0, y0, x1, y1, ...], marks it closed and sets its
	// color.
	AddClosedPolyline(ctx context.Context, coords []float64, color Color) error
}

// ErrDrawHost matches every *HostError.
var ErrDrawHost = errors.New("draw host error")

// HostError wraps a failure reported by the drawing host.
type HostError struct {
	Msg string
	Err error
}

func (e *HostError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("draw host: %s: %v", e.Msg, e.Err)
	}
	return "draw host: " + e.Msg
}

func (e *HostError) Unwrap() error { return e.Err }

func (e *HostError) Is(target error) bool { return target == ErrDrawHost }
