package pipeline

import (
	"parcelcad/internal/cad"
	"parcelcad/internal/uldk"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	default:
		return "error"
	}
}

// Notice is a message for the operator.
type Notice struct {
	Level Level
	Title string
	Text  string
}

// Report describes a finished submission.
type Report struct {
	Input Input
	// State is Idle after a complete run and Error after a halt.
	State State
	// HaltedAt is the step that failed when State is Error.
	HaltedAt State
	// Err is the halting error.
	Err error

	Lookups map[Entity]uldk.Result
	Renders map[Entity]cad.RenderResult

	Lat    float64
	Lon    float64
	URL    string
	MapErr error

	Notices []Notice
}

// Drawn reports whether every ring of every entity was drawn.
func (r Report) Drawn() bool {
	if len(r.Renders) != len(Entities) {
		return false
	}
	for _, res := range r.Renders {
		if !res.OK() {
			return false
		}
	}
	return true
}

func (r *Report) notify(level Level, title, text string) {
	r.Notices = append(r.Notices, Notice{Level: level, Title: title, Text: text})
}
