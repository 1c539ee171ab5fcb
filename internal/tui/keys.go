package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Fit      key.Binding
	Sidebar  key.Binding
	Select   key.Binding
	Open     key.Binding
	Hide     key.Binding
	Slider   key.Binding
	LowDown  key.Binding
	LowUp    key.Binding
	HighDown key.Binding
	HighUp   key.Binding
	Commit   key.Binding
	Cancel   key.Binding
	Attrs    key.Binding
	Snapshot key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Sidebar, k.Slider, k.Attrs, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.ZoomIn, k.ZoomOut, k.Fit},
		{k.Sidebar, k.Open, k.Select, k.Hide, k.Attrs, k.Snapshot},
		{k.Slider, k.LowDown, k.LowUp, k.HighDown, k.HighUp, k.Commit, k.Cancel},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan north")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan south")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan west")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan east")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Fit:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit data")),
	Sidebar:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indicators")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open dataset")),
	Hide:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide/show layers")),
	Slider:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "range")),
	LowDown:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "low -")),
	LowUp:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "low +")),
	HighDown: key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "high -")),
	HighUp:   key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "high +")),
	Commit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply range")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
	Attrs:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "attributes")),
	Snapshot: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snapshot")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q/ctrl+c", "quit")),
}
