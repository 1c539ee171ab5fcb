package tui

import (
	"os"
	"path/filepath"
	"sort"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"ejmap/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
	isDir       bool
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// datasetDir is where the picker starts: next to the configured style, or
// the working directory.
func datasetDir(opts Options) string {
	if opts.Dir != "" {
		return opts.Dir
	}
	if opts.Style == "" {
		return "."
	}
	if info, err := os.Stat(opts.Style); err == nil && info.IsDir() {
		return opts.Style
	}
	return filepath.Dir(opts.Style)
}

// refreshDir lists the supported datasets in m.dir. When there is more
// than one, the directory itself is offered as a multi-source style.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		items = append(items, fileItem{title: name, desc: filepath.Ext(name), path: filepath.Join(m.dir, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	if len(items) > 1 {
		items = append(items, fileItem{title: filepath.Base(m.dir) + "/", desc: "all datasets as sources", path: m.dir, isDir: true})
	}
	m.files.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in " + m.dir
	}
}

// openFiles switches the sidebar to the dataset picker.
func (m *Model) openFiles() {
	m.showFiles = true
	m.showSidebar = true
	m.showAttrs = false
	m.refreshDir()
	m.resize()
	cur := m.s.ctrl.Style()
	for i, it := range m.files.Items() {
		if fi, ok := it.(fileItem); ok && fi.path == cur {
			m.files.Select(i)
			break
		}
	}
}

// pickFile asks the loop to load the highlighted dataset.
func (m Model) pickFile() (Model, tea.Cmd) {
	it, ok := m.files.SelectedItem().(fileItem)
	if !ok {
		return m, nil
	}
	m.showFiles = false
	m.status = "loading " + it.title
	id := it.path
	return m, func() tea.Msg { return styleMsg{id: id} }
}
