package geom

// Flatten interleaves the coordinates of r as [x0, y0, x1, y1, ...], the
// point array form polyline APIs expect.
func Flatten(r Ring) ([]float64, error) {
	if len(r) == 0 {
		return nil, ErrEmptyRing
	}
	out := make([]float64, 0, 2*len(r))
	for _, p := range r {
		out = append(out, p.X, p.Y)
	}
	return out, nil
}
