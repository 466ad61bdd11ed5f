package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/alexanderramin/coursepath/internal/store"
	"github.com/charmbracelet/lipgloss"
)

var (
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230"))
)

// listPane shows the filtered course list. It highlights whatever course the
// broadcaster announces, wherever the announcement came from.
type listPane struct {
	app         *App
	courses     []domain.Course
	state       store.AppState
	cursor      int
	highlighted string
}

func newListPane(app *App) *listPane {
	return &listPane{app: app}
}

// refresh re-derives rows from the current store snapshot.
func (p *listPane) refresh() {
	p.state = p.app.Store.Snapshot()
	p.courses = store.Filtered(p.state)
	if p.cursor >= len(p.courses) {
		p.cursor = len(p.courses) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *listPane) setHighlight(courseID string, active bool) {
	if active {
		p.highlighted = courseID
		return
	}
	if p.highlighted == courseID {
		p.highlighted = ""
	}
}

func (p *listPane) move(delta int) {
	if len(p.courses) == 0 {
		return
	}
	p.announceCursor(false)
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.courses) {
		p.cursor = len(p.courses) - 1
	}
	p.announceCursor(true)
}

func (p *listPane) cursorID() string {
	if p.cursor < 0 || p.cursor >= len(p.courses) {
		return ""
	}
	return p.courses[p.cursor].ID
}

func (p *listPane) announceCursor(active bool) {
	if id := p.cursorID(); id != "" {
		p.app.Broadcast.Announce(id, active)
	}
}

func (p *listPane) view() string {
	if len(p.courses) == 0 {
		return "No courses."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Courses") + "\n")
	for i := range p.courses {
		c := &p.courses[i]
		line := fmt.Sprintf("%-8s %s", statusBadge(store.StatusOf(c, p.state)), c.Name)
		switch {
		case c.ID == p.highlighted:
			line = highlightStyle.Render(line)
		case i == p.cursor:
			line = cursorStyle.Render("> " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
