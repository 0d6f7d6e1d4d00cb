package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput matches every *InputError.
	ErrMalformedInput = errors.New("malformed input")
	// ErrLookupFailed matches every *LookupError.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrMapOpenFailed matches every *MapOpenError.
	ErrMapOpenFailed = errors.New("map open failed")
)

// InputError rejects a submission that is not "<x>,<y>".
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("malformed input %q: %s", e.Input, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrMalformedInput }

// LookupError covers a transport failure, a non-zero status or an
// incomplete response for one entity.
type LookupError struct {
	Entity Entity
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Entity, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool { return target == ErrLookupFailed }

// MapOpenError reports a failed reprojection or browser launch.
type MapOpenError struct {
	URL string
	Err error
}

func (e *MapOpenError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("map open failed: %v", e.Err)
	}
	return fmt.Sprintf("map open failed for %s: %v", e.URL, e.Err)
}

func (e *MapOpenError) Unwrap() error { return e.Err }

func (e *MapOpenError) Is(target error) bool { return target == ErrMapOpenFailed }
