// Package pipeline sequences a submission: parse the point, look up the
// parcel and commune, draw both and open a web map at the point.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"parcelcad/internal/browser"
	"parcelcad/internal/cad"
	"parcelcad/internal/crs"
	"parcelcad/internal/geom"
	"parcelcad/internal/uldk"
)

// Registry looks up the entities containing a point.
type Registry interface {
	GetParcelByXY(ctx context.Context, xy string) (uldk.Result, error)
	GetCommuneByXY(ctx context.Context, xy string) (uldk.Result, error)
}

// Decoder turns a registry payload into a geometry.
type Decoder interface {
	Decode(payload string) (geom.Geometry, error)
}

// Renderer draws a geometry in a style.
type Renderer interface {
	Render(ctx context.Context, g geom.Geometry, style cad.Style) cad.RenderResult
}

// Projector reprojects grid coordinates to WGS84.
type Projector interface {
	ToWGS84(x, y float64) (lat, lon float64, err error)
}

// Orchestrator runs submissions one step after another. It holds no state
// between submissions.
type Orchestrator struct {
	Registry  Registry
	Decoder   Decoder
	Renderer  Renderer
	Projector Projector
	Opener    browser.Opener

	// OpenMap launches the map URL. When false the URL is only reported.
	OpenMap bool
	// MapURL is the viewer template, see crs.MapURL.
	MapURL string

	// OnTransition, when set, is called on every state change.
	OnTransition func(from, to State)
	Log          logrus.FieldLogger
}

type run struct {
	o     *Orchestrator
	state State
	log   logrus.FieldLogger
	r     Report
}

func (x *run) enter(s State) {
	from := x.state
	x.state = s
	x.log.WithFields(logrus.Fields{"from": from, "to": s}).Debug("transition")
	if x.o.OnTransition != nil {
		x.o.OnTransition(from, s)
	}
}

func (x *run) halt(at State, err error, title string) Report {
	x.r.HaltedAt = at
	x.r.Err = err
	x.r.notify(LevelError, title, err.Error())
	x.log.WithError(err).WithField("at", at).Error(title)
	x.enter(Error)
	x.r.State = Error
	return x.r
}

// Submit runs the whole sequence for text. Lookup failures halt the run in
// Error before anything is drawn. Render and map failures are reported as
// notices and the run still returns to Idle.
func (o *Orchestrator) Submit(ctx context.Context, text string) Report {
	x := &run{o: o, state: Idle, log: o.logger().WithField("input", text)}
	x.r.Lookups = make(map[Entity]uldk.Result, len(Entities))
	x.r.Renders = make(map[Entity]cad.RenderResult, len(Entities))

	x.enter(ParsingInput)
	in, err := ParseInput(text)
	if err != nil {
		return x.halt(ParsingInput, err, "Invalid input")
	}
	x.r.Input = in

	// Both lookups are issued before either result is checked.
	x.enter(LookingUpParcel)
	parcel, perr := o.Registry.GetParcelByXY(ctx, in.XY)
	x.enter(LookingUpCommune)
	commune, cerr := o.Registry.GetCommuneByXY(ctx, in.XY)
	perr = checkLookup(Parcel, parcel, perr)
	cerr = checkLookup(Commune, commune, cerr)
	if perr != nil || cerr != nil {
		at := LookingUpCommune
		if perr != nil {
			at = LookingUpParcel
		}
		return x.halt(at, errors.Join(lookupError(Parcel, perr), lookupError(Commune, cerr)), "Lookup failed")
	}
	x.r.Lookups[Parcel] = parcel
	x.r.Lookups[Commune] = commune
	x.r.notify(LevelInfo, "Lookup OK", fmt.Sprintf("Parcel status: %s\nCommune status: %s", parcel.Status, commune.Status))

	x.enter(Rendering)
	for _, e := range Entities {
		x.draw(ctx, e, x.r.Lookups[e].Payload)
	}

	x.enter(OpeningMap)
	x.openMap()

	x.enter(Idle)
	x.r.State = Idle
	return x.r
}

// checkLookup holds every registry result to status "0" and a non-empty
// payload before anything is drawn.
func checkLookup(e Entity, res uldk.Result, err error) error {
	switch {
	case err != nil:
		return err
	case res.Status != uldk.StatusOK:
		return &uldk.StatusError{Request: e.Request(), Status: res.Status}
	case strings.TrimSpace(res.Payload) == "":
		return fmt.Errorf("%w: %s returned an empty geometry", uldk.ErrIncomplete, e.Request())
	}
	return nil
}

func lookupError(e Entity, err error) error {
	if err == nil {
		return nil
	}
	return &LookupError{Entity: e, Err: err}
}

// draw decodes and renders one entity. Failures become notices.
func (x *run) draw(ctx context.Context, e Entity, payload string) {
	log := x.log.WithField("entity", e)
	g, err := x.o.Decoder.Decode(payload)
	if err != nil {
		log.WithError(err).Warn("geometry not decoded")
		x.r.notify(LevelError, e.Title()+" not drawn", err.Error())
		return
	}
	if e == Parcel {
		x.checkContains(g)
	}
	res := x.o.Renderer.Render(ctx, g, e.Style())
	x.r.Renders[e] = res
	switch {
	case res.OK():
		x.r.notify(LevelInfo, e.Title()+" drawn", fmt.Sprintf("%s boundary drawn (%d %s).", e.Title(), res.Drawn, plural(res.Drawn, "ring")))
	case res.Drawn > 0:
		x.r.notify(LevelWarning, e.Title()+" partly drawn", fmt.Sprintf("%d of %d rings drawn:\n%v", res.Drawn, res.Rings, res.Err()))
	default:
		err := res.Err()
		if err == nil {
			err = errors.New("geometry has no rings")
		}
		x.r.notify(LevelError, e.Title()+" not drawn", err.Error())
	}
}

// checkContains warns when the queried point lies outside the returned
// parcel.
func (x *run) checkContains(g geom.Geometry) {
	p := geom.Point{X: x.r.Input.X, Y: x.r.Input.Y}
	for _, ring := range g.Rings() {
		if ring.Contains(p) {
			return
		}
	}
	x.log.Warn("point is outside the returned parcel")
	x.r.notify(LevelWarning, "Point outside parcel", fmt.Sprintf("%s does not lie inside the returned parcel.", x.r.Input.XY))
}

func (x *run) openMap() {
	lat, lon, err := x.o.Projector.ToWGS84(x.r.Input.X, x.r.Input.Y)
	if err != nil {
		x.mapFailed(&MapOpenError{Err: err})
		return
	}
	x.r.Lat, x.r.Lon = lat, lon
	u, err := crs.MapURL(x.o.MapURL, lat, lon)
	if err != nil {
		x.mapFailed(&MapOpenError{Err: err})
		return
	}
	x.r.URL = u
	if !x.o.OpenMap || x.o.Opener == nil {
		x.r.notify(LevelInfo, "Map", u)
		return
	}
	if err := x.o.Opener.Open(u); err != nil {
		x.mapFailed(&MapOpenError{URL: u, Err: err})
		return
	}
	x.log.WithField("url", u).Info("map opened")
}

func (x *run) mapFailed(err *MapOpenError) {
	x.r.MapErr = err
	x.log.WithError(err).Warn("map not opened")
	x.r.notify(LevelWarning, "Map not opened", err.Error())
}

func (o *Orchestrator) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Summary joins the notices of r into one text block.
func (r Report) Summary() string {
	var sb strings.Builder
	for i, n := range r.Notices {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s] %s: %s", n.Level, n.Title, n.Text)
	}
	return sb.String()
}
