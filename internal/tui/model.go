package tui

import (
	"context"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"parcelcad/internal/pipeline"
	"parcelcad/internal/preview"
)

// DefaultInput is the point shown in the input field at start.
const DefaultInput = "565186.44,244004.32"

// Submitter runs one submission to completion.
type Submitter interface {
	Submit(ctx context.Context, text string) pipeline.Report
}

// Options configures New.
type Options struct {
	Submitter Submitter
	// Canvas, when set, is reset before every submission and shown as
	// the drawing preview.
	Canvas *preview.Canvas
	// Input is the initial field value. Empty means DefaultInput.
	Input string
	Ctx   context.Context
}

// StateMsg reports a pipeline transition made by the running submission.
type StateMsg struct {
	From, To pipeline.State
}

// ReportMsg delivers a finished submission.
type ReportMsg struct {
	Report pipeline.Report
}

type Model struct {
	width  int
	height int

	ctx       context.Context
	submitter Submitter
	canvas    *preview.Canvas
	vp        preview.Viewport

	input   textinput.Model
	busy    bool
	pending string
	state   pipeline.State

	status      string
	helpVisible bool

	// modal notices, shown one at a time
	notices []pipeline.Notice
	last    *pipeline.Report

	// submission history
	showSidebar bool
	l           list.Model

	// lookup attributes table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) Model {
	m := Model{
		ctx:         opts.Ctx,
		submitter:   opts.Submitter,
		canvas:      opts.Canvas,
		vp:          preview.DefaultViewport,
		status:      "ready",
		helpVisible: true,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	m.input = textinput.New()
	m.input.Prompt = "x,y › "
	m.input.Placeholder = "x,y in EPSG:2180"
	m.input.CharLimit = 64
	v := opts.Input
	if v == "" {
		v = DefaultInput
	}
	m.input.SetValue(v)
	m.input.Focus()

	d := list.NewDefaultDelegate()
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "History"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(false)

	m.tbl = table.New(table.WithFocused(false))
	m.tbl.SetHeight(6)
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Busy reports whether a submission is running.
func (m Model) Busy() bool { return m.busy }

// State is the last pipeline state reported to the model.
func (m Model) State() pipeline.State { return m.state }

// Notices returns the notices still waiting to be dismissed.
func (m Model) Notices() []pipeline.Notice { return m.notices }

// Input returns the current field value.
func (m Model) Input() string { return m.input.Value() }
