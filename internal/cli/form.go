package cli

import (
	"strings"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/charmbracelet/huh"
)

// runCourseForm collects course fields interactively. deps holds one
// comma-separated entry per prerequisite (id or name); resolution to ids
// happens after the form so error messages can name the bad entry.
func runCourseForm(draft *domain.CourseDraft, deps *[]string) error {
	depsLine := strings.Join(*deps, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&draft.Name).
				Validate(func(s string) error {
					probe := domain.CourseDraft{Name: s}
					if err := probe.Validate(""); err != nil {
						return err
					}
					return nil
				}),
			huh.NewText().
				Title("Description (optional)").
				CharLimit(domain.MaxDescriptionLen).
				Value(&draft.Description),
			huh.NewInput().
				Title("Prerequisites (comma-separated ids or names, blank for none)").
				Value(&depsLine),
		),
	).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return err
	}

	*deps = (*deps)[:0]
	for _, part := range strings.Split(depsLine, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*deps = append(*deps, trimmed)
		}
	}
	return nil
}
