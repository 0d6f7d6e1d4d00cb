package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry matches every *InvalidGeometryError.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrUnsupportedGeometryKind matches every *UnsupportedKindError.
	ErrUnsupportedGeometryKind = errors.New("unsupported geometry kind")
	// ErrEmptyRing is returned when flattening a ring with no points.
	ErrEmptyRing = errors.New("empty ring")
)

// DecodeError indicates the payload is not hex encoded WKB.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode wkb: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidGeometryError indicates a decoded geometry that fails validation.
type InvalidGeometryError struct {
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

func (e *InvalidGeometryError) Is(target error) bool { return target == ErrInvalidGeometry }

// UnsupportedKindError indicates a geometry that is neither a Polygon nor a
// MultiPolygon.
type UnsupportedKindError struct {
	Kind string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported geometry kind: %s", e.Kind)
}

func (e *UnsupportedKindError) Is(target error) bool { return target == ErrUnsupportedGeometryKind }

func invalidf(format string, args ...any) error {
	return &InvalidGeometryError{Reason: fmt.Sprintf(format, args...)}
}
