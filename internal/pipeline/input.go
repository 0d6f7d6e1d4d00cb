package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Input is a parsed submission.
type Input struct {
	X float64
	Y float64
	// XY is the "x,y" value sent to the registry.
	XY string
}

// ParseInput accepts exactly "<x>,<y>": one comma and two numbers, each
// side trimmed of spaces.
func ParseInput(s string) (Input, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Input{}, &InputError{Input: s, Reason: "expected exactly one comma"}
	}
	xs, ys := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if xs == "" || ys == "" {
		return Input{}, &InputError{Input: s, Reason: "empty coordinate"}
	}
	x, err := parseCoord(xs)
	if err != nil {
		return Input{}, &InputError{Input: s, Reason: "x: " + err.Error()}
	}
	y, err := parseCoord(ys)
	if err != nil {
		return Input{}, &InputError{Input: s, Reason: "y: " + err.Error()}
	}
	return Input{X: x, Y: y, XY: xs + "," + ys}, nil
}

// decimalChars are the characters of a plain decimal number, exponent
// included. Hex floats and digit separators are left out.
const decimalChars = "0123456789+-.eE"

func parseCoord(s string) (float64, error) {
	if strings.Trim(s, decimalChars) != "" {
		return 0, fmt.Errorf("%q is not a decimal number", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}
