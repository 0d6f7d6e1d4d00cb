package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"parcelcad/internal/browser"
	"parcelcad/internal/cad"
	"parcelcad/internal/crs"
	"parcelcad/internal/geom"
	"parcelcad/internal/pipeline"
	"parcelcad/internal/preview"
	"parcelcad/internal/tui"
	"parcelcad/internal/uldk"
)

const (
	hostAutoCAD = "autocad"
	hostPreview = "preview"
)

// previewWidth and previewHeight size the canvas printed by draw.
const (
	previewWidth  = 64
	previewHeight = 16
)

// newLogger builds the logger described by the log options. Without a log
// file, records go to fallback.
func newLogger(fallback io.Writer) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	lvl, err := logrus.ParseLevel(Cfg.GetString("log.level"))
	if err != nil {
		return nil, nil, fmt.Errorf("parcelcad: %v", err)
	}
	log.SetLevel(lvl)
	closer := func() {}
	if path := Cfg.GetString("log.file"); path != "" {
		f, err := os.OpenFile(os.ExpandEnv(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("parcelcad: opening log file: %v", err)
		}
		log.SetOutput(f)
		closer = func() { f.Close() }
	} else {
		log.SetOutput(fallback)
	}
	return log, closer, nil
}

// registryFields reads registry.fields. Values from the environment or a
// config file may be one comma separated string.
func registryFields() ([]string, error) {
	raw, err := cast.ToStringSliceE(Cfg.Get("registry.fields"))
	if err != nil {
		return nil, fmt.Errorf("parcelcad: registry.fields: %v", err)
	}
	var out []string
	for _, r := range raw {
		for _, f := range strings.Split(r, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// newHost returns the configured drawing host. With the autocad host and a
// canvas, every polyline is mirrored onto the canvas.
func newHost(canvas *preview.Canvas) (cad.Host, error) {
	switch name := Cfg.GetString("host"); name {
	case hostAutoCAD:
		ac := cad.NewAutoCAD()
		ac.ProgID = Cfg.GetString("autocad.progid")
		if canvas != nil {
			return cad.Mirror{Primary: ac, Secondary: canvas}, nil
		}
		return ac, nil
	case hostPreview:
		if canvas == nil {
			return nil, fmt.Errorf("parcelcad: preview host needs a canvas")
		}
		return canvas, nil
	default:
		return nil, fmt.Errorf("parcelcad: unknown host %q, want %s or %s", name, hostAutoCAD, hostPreview)
	}
}

// newOrchestrator wires the pipeline from the configuration.
func newOrchestrator(log logrus.FieldLogger, canvas *preview.Canvas) (*pipeline.Orchestrator, error) {
	fields, err := registryFields()
	if err != nil {
		return nil, err
	}
	client := uldk.NewClient(Cfg.GetString("registry.url"), Cfg.GetDuration("registry.timeout"))
	client.Fields = fields
	client.Log = log

	host, err := newHost(canvas)
	if err != nil {
		return nil, err
	}
	proj, err := crs.NewProjector()
	if err != nil {
		return nil, err
	}
	return &pipeline.Orchestrator{
		Registry:  client,
		Decoder:   geom.Decoder{Log: log},
		Renderer:  &cad.Renderer{Host: host, StopOnError: Cfg.GetBool("render.stop-on-error"), Log: log},
		Projector: proj,
		Opener:    browser.System{},
		OpenMap:   Cfg.GetBool("map.open"),
		MapURL:    Cfg.GetString("map.url"),
		Log:       log,
	}, nil
}

func runUI(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	canvas := preview.NewCanvas()
	orch, err := newOrchestrator(log, canvas)
	if err != nil {
		return err
	}
	m := tui.New(tui.Options{
		Submitter: orch,
		Canvas:    canvas,
		Input:     Cfg.GetString("input"),
		Ctx:       cmd.Context(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	orch.OnTransition = func(from, to pipeline.State) {
		p.Send(tui.StateMsg{From: from, To: to})
	}
	log.WithField("host", Cfg.GetString("host")).Info("starting ui")
	_, err = p.Run()
	return err
}

func runDraw(cmd *cobra.Command, args []string) error {
	log, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	input := Cfg.GetString("input")
	if len(args) == 1 {
		input = args[0]
	}
	var canvas *preview.Canvas
	if Cfg.GetString("host") == hostPreview {
		canvas = preview.NewCanvas()
	}
	orch, err := newOrchestrator(log, canvas)
	if err != nil {
		return err
	}
	r := orch.Submit(cmd.Context(), input)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, r.Summary())
	if canvas != nil && len(canvas.Polylines()) > 0 {
		fmt.Fprintln(out)
		for _, l := range canvas.Lines(previewWidth, previewHeight, preview.DefaultViewport) {
			fmt.Fprintln(out, strings.TrimRight(l, " "))
		}
	}
	if r.State == pipeline.Error {
		return r.Err
	}
	return nil
}
