package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"

	"ejmap/internal/geom"
	"ejmap/internal/layers"
	"ejmap/internal/render"
	"ejmap/internal/store"
	"ejmap/internal/viewport"
)

// Options wires the TUI to a map and its data.
type Options struct {
	Map       *render.Map
	Indicator string
	Style     string
	// Bounds is the initial view; an invalid box fits the loaded data.
	Bounds   geom.BBox
	Settle   time.Duration
	PanStep  float64
	ZoomStep float64
	// Store records snapshots when set.
	Store *store.Store
	// Dir is where the dataset picker starts. Defaults to the style's
	// directory.
	Dir string
}

// session is shared by every copy of Model. The controller publishes into
// it from inside Update, so it is only touched on the event loop.
type session struct {
	ctrl  *viewport.Controller
	mp    *render.Map
	store *store.Store
	view  viewport.View
	seq   int
}

type Model struct {
	width  int
	height int

	s    *session
	opts Options

	showSidebar bool
	helpVisible bool
	sliderFocus bool
	status      string

	// indicator picker
	l list.Model

	// dataset picker
	showFiles bool
	files     list.Model
	dir       string

	// last rendered map size in cells
	mapW int
	mapH int

	// hover state
	hovering bool
	hoverX   int
	hoverY   int
	hoverLon float64
	hoverLat float64

	// attributes table
	showAttrs bool
	tbl       table.Model

	help help.Model
}

func New(opts Options) (Model, error) {
	if opts.Map == nil {
		return Model{}, eris.New("tui: map is required")
	}
	if opts.Settle <= 0 {
		opts.Settle = 250 * time.Millisecond
	}
	if opts.PanStep <= 0 {
		opts.PanStep = 64
	}
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = 0.5
	}
	if opts.Bounds == (geom.BBox{}) {
		opts.Bounds = geom.EmptyBBox
	}
	s := &session{mp: opts.Map, store: opts.Store}
	ctrl, err := viewport.New(opts.Map, viewport.Options{
		Table:     opts.Map.Table(),
		Indicator: opts.Indicator,
		Publish:   func(v viewport.View) { s.view = v },
	})
	if err != nil {
		return Model{}, err
	}
	s.ctrl = ctrl
	s.view = ctrl.View()

	m := Model{
		s:           s,
		opts:        opts,
		showSidebar: true,
		helpVisible: true,
		status:      "ejmap ready",
		help:        help.New(),
	}
	d := list.NewDefaultDelegate()
	m.l = list.New(indicatorItems(opts.Map.Table()), d, 0, 0)
	m.l.Title = "Indicators"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(false)
	m.selectListItem(ctrl.Indicator())

	m.dir = datasetDir(opts)
	m.files = list.New(nil, d, 0, 0)
	m.files.Title = "Datasets"
	m.files.SetShowHelp(false)
	m.files.SetShowStatusBar(false)
	m.files.SetFilteringEnabled(false)

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m, nil
}

// styleMsg asks the loop to load a style.
type styleMsg struct{ id string }

// idleMsg fires once the map has settled; stale sequence numbers are
// dropped so only the last move aggregates.
type idleMsg struct{ seq int }

func (m Model) Init() tea.Cmd {
	id := m.opts.Style
	return func() tea.Msg { return styleMsg{id: id} }
}

func (m Model) loadStyle(id string) (Model, tea.Cmd) {
	if id != "" && id == m.s.ctrl.Style() {
		m.status = "style already loaded"
		return m, nil
	}
	if err := m.s.ctrl.SetStyle(context.Background(), id); err != nil {
		m.status = "style error: " + err.Error()
		return m, nil
	}
	bb := m.opts.Bounds
	if !bb.Valid() {
		bb = m.s.mp.DataBounds()
	}
	m.s.mp.FitBounds(bb)
	m.s.ctrl.HandleLoad()
	m.status = "loaded " + id
	return m, m.settle()
}

// settle schedules an idle message after the configured quiet period.
func (m Model) settle() tea.Cmd {
	m.s.seq++
	seq := m.s.seq
	return tea.Tick(m.opts.Settle, func(time.Time) tea.Msg { return idleMsg{seq: seq} })
}

// Current returns the last published controller view.
func (m Model) Current() viewport.View { return m.s.view }

func (m *Model) selectListItem(indicator string) {
	for i, it := range m.l.Items() {
		if ii, ok := it.(indicatorItem); ok && ii.id == indicator {
			m.l.Select(i)
			return
		}
	}
}

// visibleFill is the fill layer of the active indicator at the current zoom.
func (m Model) visibleFill() (layers.Descriptor, bool) {
	p, err := m.s.mp.Table().Pair(m.s.ctrl.Indicator())
	if err != nil {
		return layers.Descriptor{}, false
	}
	return p.At(m.s.mp.Zoom()), true
}
