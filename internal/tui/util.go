package tui

const (
	sidebarWidth = 28
	panelWidth   = 40
	headerHeight = 1
	footerHeight = 2
)

// layout is where each column sits on screen, in cells.
type layout struct {
	sidebarW int
	panelW   int
	contentH int
	mapX     int
	mapY     int
	mapW     int
	mapH     int
}

func (m Model) layout() layout {
	l := layout{panelW: panelWidth, mapY: headerHeight}
	if m.showSidebar {
		l.sidebarW = sidebarWidth
		l.mapX = sidebarWidth + 1
	}
	l.contentH = max(4, m.height-headerHeight-footerHeight)
	l.mapW = max(10, m.width-l.mapX-l.panelW-1)
	l.mapH = l.contentH
	return l
}

// resize follows the terminal: the list gets the sidebar height and the
// map keeps its virtual width while its height tracks the cell aspect
// (a braille cell is 2x4 dots).
func (m *Model) resize() {
	lay := m.layout()
	m.mapW, m.mapH = lay.mapW, lay.mapH
	m.l.SetSize(sidebarWidth-2, max(1, lay.contentH-2))
	m.files.SetSize(sidebarWidth-2, max(1, lay.contentH-2))
	vw, _ := m.s.mp.Size()
	m.s.mp.Resize(vw, max(1, vw*2*lay.mapH/lay.mapW))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
