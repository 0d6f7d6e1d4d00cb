package pipeline

import (
	"context"
	"encoding/binary"
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	gogeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
	"github.com/twpayne/go-geom/encoding/wkbhex"

	"parcelcad/internal/browser"
	"parcelcad/internal/cad"
	"parcelcad/internal/crs"
	"parcelcad/internal/geom"
	"parcelcad/internal/uldk"
)

const defaultInput = "565186.44,244004.32"

type lookup struct {
	res uldk.Result
	err error
}

type fakeRegistry struct {
	parcel  lookup
	commune lookup
	calls   []string
}

func (r *fakeRegistry) GetParcelByXY(_ context.Context, xy string) (uldk.Result, error) {
	r.calls = append(r.calls, uldk.GetParcelByXY+" "+xy)
	return r.parcel.res, r.parcel.err
}

func (r *fakeRegistry) GetCommuneByXY(_ context.Context, xy string) (uldk.Result, error) {
	r.calls = append(r.calls, uldk.GetCommuneByXY+" "+xy)
	return r.commune.res, r.commune.err
}

type drawCall struct {
	points int
	color  cad.Color
}

type fakeHost struct {
	calls []drawCall
	err   error
}

func (h *fakeHost) AddClosedPolyline(_ context.Context, coords []float64, color cad.Color) error {
	h.calls = append(h.calls, drawCall{points: len(coords) / 2, color: color})
	return h.err
}

func (h *fakeHost) count(c cad.Color) int {
	n := 0
	for _, call := range h.calls {
		if call.color == c {
			n++
		}
	}
	return n
}

func square(x0, y0, size float64) []gogeom.Coord {
	return []gogeom.Coord{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0},
	}
}

type OrchestratorSuite struct {
	suite.Suite
	registry    *fakeRegistry
	host        *fakeHost
	opened      []string
	openErr     error
	transitions []State
	orch        *Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	log, _ := test.NewNullLogger()
	proj, err := crs.NewProjector()
	s.Require().NoError(err)

	s.registry = &fakeRegistry{
		parcel:  lookup{res: uldk.Result{Status: uldk.StatusOK, Payload: s.parcelPayload()}},
		commune: lookup{res: uldk.Result{Status: uldk.StatusOK, Payload: s.communePayload(1)}},
	}
	s.host = &fakeHost{}
	s.opened = nil
	s.openErr = nil
	s.transitions = nil
	s.orch = &Orchestrator{
		Registry:  s.registry,
		Decoder:   geom.Decoder{Log: log},
		Renderer:  &cad.Renderer{Host: s.host, Log: log},
		Projector: proj,
		Opener: browser.Func(func(u string) error {
			s.opened = append(s.opened, u)
			return s.openErr
		}),
		OpenMap: true,
		OnTransition: func(_, to State) {
			s.transitions = append(s.transitions, to)
		},
		Log: log,
	}
}

func (s *OrchestratorSuite) parcelPayload() string {
	p := gogeom.NewPolygon(gogeom.XY).MustSetCoords([][]gogeom.Coord{square(565180, 244000, 20)}).SetSRID(2180)
	out, err := ewkbhex.Encode(p, binary.LittleEndian)
	s.Require().NoError(err)
	return out
}

// communePayload returns a multipolygon of n members, the first one
// covering the default point.
func (s *OrchestratorSuite) communePayload(n int) string {
	coords := make([][][]gogeom.Coord, 0, n)
	for i := 0; i < n; i++ {
		coords = append(coords, [][]gogeom.Coord{square(564000+float64(i)*5000, 243000, 4000)})
	}
	mp := gogeom.NewMultiPolygon(gogeom.XY).MustSetCoords(coords)
	out, err := wkbhex.Encode(mp, binary.LittleEndian)
	s.Require().NoError(err)
	return out
}

func (s *OrchestratorSuite) TestHappyPath() {
	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Idle, r.State)
	s.NoError(r.Err)
	s.Equal([]State{ParsingInput, LookingUpParcel, LookingUpCommune, Rendering, OpeningMap, Idle}, s.transitions)
	s.Equal([]string{
		uldk.GetParcelByXY + " " + defaultInput,
		uldk.GetCommuneByXY + " " + defaultInput,
	}, s.registry.calls)

	s.True(r.Drawn())
	s.Equal(1, s.host.count(cad.Red))
	s.Equal(1, s.host.count(cad.Green))
	s.Equal(5, s.host.calls[0].points)

	s.InDelta(50.059725, r.Lat, 1e-4)
	s.InDelta(19.910982, r.Lon, 1e-4)
	s.Require().Len(s.opened, 1)
	u, err := url.Parse(s.opened[0])
	s.Require().NoError(err)
	s.Equal("www.google.com", u.Host)
	s.Equal(strconv.FormatFloat(r.Lat, 'f', -1, 64)+","+strconv.FormatFloat(r.Lon, 'f', -1, 64), u.Query().Get("q"))
	s.Equal(s.opened[0], r.URL)
	s.NoError(r.MapErr)

	for _, n := range r.Notices {
		s.NotEqual(LevelError, n.Level, n.Text)
		s.NotEqual(LevelWarning, n.Level, n.Text)
	}
	s.Equal("Lookup OK", r.Notices[0].Title)
	s.Contains(r.Notices[0].Text, "Parcel status: 0")
}

func (s *OrchestratorSuite) TestMalformedInput() {
	r := s.orch.Submit(context.Background(), "abc")

	s.Equal(Error, r.State)
	s.Equal(ParsingInput, r.HaltedAt)
	s.ErrorIs(r.Err, ErrMalformedInput)
	s.Empty(s.registry.calls)
	s.Empty(s.host.calls)
	s.Empty(s.opened)
	s.Equal([]State{ParsingInput, Error}, s.transitions)
	s.Require().Len(r.Notices, 1)
	s.Equal(LevelError, r.Notices[0].Level)
}

func (s *OrchestratorSuite) TestParcelStatusFailure() {
	s.registry.parcel = lookup{err: &uldk.StatusError{Request: uldk.GetParcelByXY, Status: "1"}}

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Error, r.State)
	s.Equal(LookingUpParcel, r.HaltedAt)
	s.Len(s.registry.calls, 2, "commune lookup is still issued")
	s.ErrorIs(r.Err, ErrLookupFailed)
	s.ErrorIs(r.Err, uldk.ErrStatus)
	var lerr *LookupError
	s.Require().ErrorAs(r.Err, &lerr)
	s.Equal(Parcel, lerr.Entity)
	s.Empty(s.host.calls)
	s.Empty(s.opened)
	s.Empty(r.URL)
	s.NotContains(s.transitions, Rendering)
	s.NotContains(s.transitions, OpeningMap)
}

func (s *OrchestratorSuite) TestCommuneIncomplete() {
	s.registry.commune = lookup{err: uldk.ErrIncomplete}

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Error, r.State)
	s.Equal(LookingUpCommune, r.HaltedAt)
	var lerr *LookupError
	s.Require().ErrorAs(r.Err, &lerr)
	s.Equal(Commune, lerr.Entity)
	s.Empty(s.host.calls)
}

func (s *OrchestratorSuite) TestLookupResultGate() {
	tests := []struct {
		name    string
		parcel  uldk.Result
		commune uldk.Result
		at      State
		entity  Entity
		want    error
	}{
		{
			name:    "parcel status",
			parcel:  uldk.Result{Status: "-1", Payload: s.parcelPayload()},
			commune: uldk.Result{Status: uldk.StatusOK, Payload: s.communePayload(1)},
			at:      LookingUpParcel,
			entity:  Parcel,
			want:    uldk.ErrStatus,
		},
		{
			name:    "commune payload",
			parcel:  uldk.Result{Status: uldk.StatusOK, Payload: s.parcelPayload()},
			commune: uldk.Result{Status: uldk.StatusOK, Payload: " "},
			at:      LookingUpCommune,
			entity:  Commune,
			want:    uldk.ErrIncomplete,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.registry.parcel = lookup{res: tt.parcel}
			s.registry.commune = lookup{res: tt.commune}

			r := s.orch.Submit(context.Background(), defaultInput)

			s.Equal(Error, r.State)
			s.Equal(tt.at, r.HaltedAt)
			s.ErrorIs(r.Err, ErrLookupFailed)
			s.ErrorIs(r.Err, tt.want)
			var lerr *LookupError
			s.Require().ErrorAs(r.Err, &lerr)
			s.Equal(tt.entity, lerr.Entity)
			s.Empty(s.host.calls)
			s.Empty(s.opened)
			s.NotContains(s.transitions, Rendering)
		})
	}
}

func (s *OrchestratorSuite) TestCommuneMultiPolygon() {
	s.registry.commune.res.Payload = s.communePayload(3)

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Idle, r.State)
	s.Equal(3, s.host.count(cad.Green))
	s.Equal(1, s.host.count(cad.Red))
	s.Equal(cad.StyleCommune, r.Renders[Commune].Style)
	s.Equal(3, r.Renders[Commune].Drawn)
}

func (s *OrchestratorSuite) TestRenderFailureDoesNotBlockMap() {
	s.host.err = errors.New("no active document")

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Idle, r.State)
	s.False(r.Drawn())
	s.Len(s.host.calls, 2, "commune is attempted after the parcel fails")
	s.Len(s.opened, 1)
	titles := make([]string, 0, len(r.Notices))
	for _, n := range r.Notices {
		titles = append(titles, n.Title)
	}
	s.Contains(titles, "Parcel not drawn")
	s.Contains(titles, "Commune not drawn")
}

func (s *OrchestratorSuite) TestUnsupportedGeometry() {
	pt := gogeom.NewPoint(gogeom.XY).MustSetCoords(gogeom.Coord{565186, 244004})
	payload, err := wkbhex.Encode(pt, binary.LittleEndian)
	s.Require().NoError(err)
	s.registry.parcel.res.Payload = payload

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Idle, r.State)
	s.Equal(1, s.host.count(cad.Green))
	s.Equal(0, s.host.count(cad.Red))
	s.Contains(r.Summary(), "unsupported geometry kind: Point")
}

func (s *OrchestratorSuite) TestPointOutsideParcel() {
	r := s.orch.Submit(context.Background(), "565100,244004.32")

	s.Equal(Idle, r.State)
	s.Contains(r.Summary(), "Point outside parcel")
}

func (s *OrchestratorSuite) TestMapOpenFailure() {
	s.openErr = errors.New("no display")

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Equal(Idle, r.State)
	s.ErrorIs(r.MapErr, ErrMapOpenFailed)
	s.NotEmpty(r.URL)
	s.True(r.Drawn())
}

func (s *OrchestratorSuite) TestMapDisabled() {
	s.orch.OpenMap = false

	r := s.orch.Submit(context.Background(), defaultInput)

	s.Empty(s.opened)
	s.NotEmpty(r.URL)
	last := r.Notices[len(r.Notices)-1]
	s.Equal("Map", last.Title)
	s.Equal(r.URL, last.Text)
}
