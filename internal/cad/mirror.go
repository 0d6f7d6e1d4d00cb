package cad

import "context"

// Mirror draws into Primary and copies every polyline to Secondary. Only
// Primary's outcome is reported; Secondary receives the polyline even when
// Primary fails so the preview shows what was attempted.
type Mirror struct {
	Primary   Host
	Secondary Host
}

func (m Mirror) AddClosedPolyline(ctx context.Context, coords []float64, color Color) error {
	if m.Secondary != nil {
		_ = m.Secondary.AddClosedPolyline(ctx, coords, color)
	}
	return m.Primary.AddClosedPolyline(ctx, coords, color)
}
