package cli

import (
	"fmt"
	"io"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/alexanderramin/coursepath/internal/store"
	"github.com/charmbracelet/lipgloss"
)

var (
	completedBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("done")
	availableBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("open")
	lockedBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("locked")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func statusBadge(status domain.CourseStatus) string {
	switch status {
	case domain.StatusCompleted:
		return completedBadge
	case domain.StatusAvailable:
		return availableBadge
	default:
		return lockedBadge
	}
}

// printCourseRow writes one aligned list row.
func printCourseRow(w io.Writer, c *domain.Course, state store.AppState) {
	deps := ""
	if len(c.Dependencies) > 0 {
		deps = dimStyle.Render(fmt.Sprintf("(needs %d)", len(c.Dependencies)))
	}
	fmt.Fprintf(w, "%-8s  %-8s  %s %s\n",
		c.DisplayID(), statusBadge(store.StatusOf(c, state)), c.Name, deps)
}

func printCourseDetail(w io.Writer, c *domain.Course, state store.AppState) {
	fmt.Fprintf(w, "%s\n", headerStyle.Render(c.Name))
	fmt.Fprintf(w, "ID:      %s\n", c.ID)
	fmt.Fprintf(w, "Status:  %s\n", statusBadge(store.StatusOf(c, state)))
	if c.Description != "" {
		fmt.Fprintf(w, "About:   %s\n", c.Description)
	}
	if len(c.Dependencies) == 0 {
		fmt.Fprintln(w, "Needs:   nothing, start anytime")
		return
	}
	fmt.Fprintln(w, "Needs:")
	byID := make(map[string]*domain.Course, len(state.Courses))
	for i := range state.Courses {
		byID[state.Courses[i].ID] = &state.Courses[i]
	}
	for _, depID := range c.Dependencies {
		if dep, ok := byID[depID]; ok {
			fmt.Fprintf(w, "  %-8s  %s %s\n", dep.DisplayID(), statusBadge(store.StatusOf(dep, state)), dep.Name)
		} else {
			fmt.Fprintf(w, "  %-8s  %s\n", depID, dimStyle.Render("(unknown)"))
		}
	}
}
