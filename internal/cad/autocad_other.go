//go:build !windows

package cad

import (
	"context"
	"runtime"
)

// AutoCAD drives a running AutoCAD instance over COM. COM automation only
// exists on Windows; elsewhere every call fails.
type AutoCAD struct {
	ProgID string
}

// NewAutoCAD returns a host bound to the AutoCAD.Application ProgID.
func NewAutoCAD() *AutoCAD {
	return &AutoCAD{ProgID: DefaultProgID}
}

func (a *AutoCAD) AddClosedPolyline(ctx context.Context, coords []float64, color Color) error {
	return &HostError{Msg: "COM automation is not available on " + runtime.GOOS}
}
