package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// levelsPane shows the catalog grouped into parallel levels, flattened into
// navigable rows. It reacts to the same broadcast highlights as the list.
type levelsPane struct {
	app         *App
	levels      [][]domain.Course
	cycle       []string
	err         error
	rows        []levelRow
	cursor      int
	highlighted string
}

type levelRow struct {
	level  int
	course domain.Course
}

func newLevelsPane(app *App) *levelsPane {
	return &levelsPane{app: app}
}

func (p *levelsPane) apply(msg levelsLoadedMsg) {
	p.err = msg.err
	p.cycle = msg.cycle
	p.levels = msg.levels
	p.rows = p.rows[:0]
	for level, courses := range msg.levels {
		for _, c := range courses {
			p.rows = append(p.rows, levelRow{level: level, course: c})
		}
	}
	if p.cursor >= len(p.rows) {
		p.cursor = 0
	}
}

func (p *levelsPane) setHighlight(courseID string, active bool) {
	if active {
		p.highlighted = courseID
		return
	}
	if p.highlighted == courseID {
		p.highlighted = ""
	}
}

func (p *levelsPane) move(delta int) {
	if len(p.rows) == 0 {
		return
	}
	p.announceCursor(false)
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	p.announceCursor(true)
}

func (p *levelsPane) cursorID() string {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return ""
	}
	return p.rows[p.cursor].course.ID
}

func (p *levelsPane) announceCursor(active bool) {
	if id := p.cursorID(); id != "" {
		p.app.Broadcast.Announce(id, active)
	}
}

func (p *levelsPane) view() string {
	if p.err != nil {
		return "Levels unavailable."
	}
	if len(p.cycle) > 0 {
		return "Cycle detected:\n  " + strings.Join(p.cycle, " -> ")
	}
	if len(p.rows) == 0 {
		return "No levels."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Timeline") + "\n")
	lastLevel := -1
	for i, row := range p.rows {
		if row.level != lastLevel {
			b.WriteString(dimStyle.Render(fmt.Sprintf("— level %d —", row.level+1)) + "\n")
			lastLevel = row.level
		}
		line := row.course.Name
		switch {
		case row.course.ID == p.highlighted:
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
