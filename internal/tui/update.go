package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ejmap/internal/format"
	"ejmap/internal/store"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case styleMsg:
		return m.loadStyle(msg.id)
	case idleMsg:
		if msg.seq != m.s.seq {
			return m, nil
		}
		m.s.ctrl.HandleIdle()
		if m.showAttrs {
			m.refreshAttrs()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}
	if m.sliderFocus {
		return m.handleSliderKey(msg)
	}
	if m.showFiles {
		switch {
		case key.Matches(msg, keys.Select):
			return m.pickFile()
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			m.files, cmd = m.files.Update(msg)
			return m, cmd
		case key.Matches(msg, keys.Open), key.Matches(msg, keys.Cancel):
			m.showFiles = false
			return m, nil
		}
	}
	if m.showSidebar {
		switch {
		case key.Matches(msg, keys.Select):
			var ok bool
			if m, ok = m.selectIndicator(); ok {
				return m, m.settle()
			}
			return m, nil
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
	}
	step := m.opts.PanStep
	switch {
	case key.Matches(msg, keys.Up):
		return m.move(0, 0, -step)
	case key.Matches(msg, keys.Down):
		return m.move(0, 0, step)
	case key.Matches(msg, keys.Left):
		return m.move(0, -step, 0)
	case key.Matches(msg, keys.Right):
		return m.move(0, step, 0)
	case key.Matches(msg, keys.ZoomIn):
		return m.move(m.opts.ZoomStep, 0, 0)
	case key.Matches(msg, keys.ZoomOut):
		return m.move(-m.opts.ZoomStep, 0, 0)
	case key.Matches(msg, keys.Fit):
		m.s.ctrl.HandleZoomStart()
		m.s.mp.FitBounds(m.s.mp.DataBounds())
		m.s.ctrl.HandleMoveEnd()
		m.status = fmt.Sprintf("zoom: %.2f", m.s.mp.Zoom())
		return m, m.settle()
	case key.Matches(msg, keys.Sidebar):
		m.showSidebar = !m.showSidebar
		m.showFiles = false
		m.resize()
	case key.Matches(msg, keys.Open):
		m.openFiles()
	case key.Matches(msg, keys.Hide):
		if m.s.ctrl.Hidden() {
			if err := m.s.ctrl.ShowLayers(); err != nil {
				m.status = "show layers: " + err.Error()
				return m, nil
			}
			m.status = "layers shown"
			return m, m.settle()
		}
		m.s.ctrl.HideLayers()
		m.status = "layers hidden"
	case key.Matches(msg, keys.Slider):
		m.sliderFocus = true
		m.status = "range: [ ] move low, { } move high, enter apply, esc cancel"
	case key.Matches(msg, keys.Attrs):
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrs()
		}
	case key.Matches(msg, keys.Snapshot):
		m.snapshot()
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// move zooms by dz levels and pans by (dx, dy) virtual pixels, then lets
// the controller know the gesture ended.
func (m Model) move(dz, dx, dy float64) (Model, tea.Cmd) {
	if dz != 0 {
		m.s.ctrl.HandleZoomStart()
		m.s.mp.ZoomBy(dz)
	}
	if dx != 0 || dy != 0 {
		m.s.mp.Pan(dx, dy)
	}
	m.s.ctrl.HandleMoveEnd()
	m.status = fmt.Sprintf("zoom: %.2f", m.s.mp.Zoom())
	return m, m.settle()
}

// sliderStep nudges a thumb by a fiftieth of the domain, at least 1.
func (m Model) sliderStep() float64 {
	d := m.s.ctrl.Range().Domain()
	return math.Max(1, math.Round((d.Max-d.Min)/50))
}

func (m Model) handleSliderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rng := m.s.ctrl.Range()
	cur := rng.Pending()
	step := m.sliderStep()
	switch {
	case key.Matches(msg, keys.LowDown):
		rng.Drag(cur.Low-step, cur.High)
	case key.Matches(msg, keys.LowUp):
		rng.Drag(math.Min(cur.Low+step, cur.High), cur.High)
	case key.Matches(msg, keys.HighDown):
		rng.Drag(cur.Low, math.Max(cur.High-step, cur.Low))
	case key.Matches(msg, keys.HighUp):
		rng.Drag(cur.Low, cur.High+step)
	case key.Matches(msg, keys.Commit):
		rng.Commit()
		sel := rng.Range()
		m.status = fmt.Sprintf("range applied: %s - %s", format.Compact(sel.Low), format.Compact(sel.High))
		m.sliderFocus = false
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Slider):
		rng.Cancel()
		m.status = "range unchanged"
		m.sliderFocus = false
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	lay := m.layout()
	cx, cy := msg.X-lay.mapX, msg.Y-lay.mapY
	inside := cx >= 0 && cx < lay.mapW && cy >= 0 && cy < lay.mapH
	if !inside {
		if m.hovering {
			m.hovering = false
			m.s.ctrl.HandleMouseLeave()
		}
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.move(m.opts.ZoomStep, 0, 0)
	case tea.MouseButtonWheelDown:
		return m.move(-m.opts.ZoomStep, 0, 0)
	}

	m.hoverX, m.hoverY = cx, cy
	m.hoverLon, m.hoverLat = m.cellToLonLat(cx, cy, lay.mapW, lay.mapH)
	fill, ok := m.visibleFill()
	if !ok {
		return m, nil
	}
	fs, err := m.s.mp.FeaturesAt(m.hoverLon, m.hoverLat, fill.ID)
	if err != nil {
		zap.L().Debug("features at pointer", zap.Error(err))
		return m, nil
	}
	if len(fs) == 0 {
		if m.hovering {
			m.s.ctrl.HandleMouseLeave()
		}
		m.hovering = false
		return m, nil
	}
	m.hovering = true
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.s.ctrl.HandleClick(m.hoverLon, m.hoverLat, fs)
	} else {
		m.s.ctrl.HandleMouseMove(m.hoverLon, m.hoverLat, fs)
	}
	return m, nil
}

func (m *Model) snapshot() {
	if m.s.store == nil {
		m.status = "snapshots disabled: set store.path"
		return
	}
	lon, lat := m.s.mp.Center()
	id, err := m.s.store.Save(context.Background(), store.FromView(m.s.view, lon, lat, time.Now()))
	if err != nil {
		m.status = "snapshot error: " + err.Error()
		zap.L().Error("snapshot", zap.Error(err))
		return
	}
	m.status = "snapshot " + id.String()[:8] + " saved"
}
