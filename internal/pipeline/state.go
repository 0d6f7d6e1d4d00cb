package pipeline

import (
	"fmt"

	"parcelcad/internal/cad"
	"parcelcad/internal/uldk"
)

// State is a step of a submission.
type State int

const (
	Idle State = iota
	ParsingInput
	LookingUpParcel
	LookingUpCommune
	Rendering
	OpeningMap
	Error
)

var stateNames = [...]string{
	Idle:             "idle",
	ParsingInput:     "parsing input",
	LookingUpParcel:  "looking up parcel",
	LookingUpCommune: "looking up commune",
	Rendering:        "rendering",
	OpeningMap:       "opening map",
	Error:            "error",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Entity is one of the two looked up objects.
type Entity int

const (
	Parcel Entity = iota + 1
	Commune
)

// Entities lists every entity in lookup and render order.
var Entities = []Entity{Parcel, Commune}

func (e Entity) String() string {
	switch e {
	case Parcel:
		return "parcel"
	case Commune:
		return "commune"
	}
	return fmt.Sprintf("Entity(%d)", int(e))
}

// Title is the capitalised name used in notices.
func (e Entity) Title() string {
	switch e {
	case Parcel:
		return "Parcel"
	case Commune:
		return "Commune"
	}
	return e.String()
}

// Request is the registry request name that looks e up.
func (e Entity) Request() string {
	if e == Commune {
		return uldk.GetCommuneByXY
	}
	return uldk.GetParcelByXY
}

// Style is the render style of e.
func (e Entity) Style() cad.Style {
	if e == Commune {
		return cad.StyleCommune
	}
	return cad.StyleParcel
}
