package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// resolveCourse matches input against the store's course list:
// exact id, then exact name (case-insensitive), then id prefix.
func resolveCourse(app *App, input string) (*domain.Course, error) {
	if input == "" {
		return nil, fmt.Errorf("course ID or name is required")
	}

	courses := app.Store.Snapshot().Courses

	for i := range courses {
		if courses[i].ID == input {
			return &courses[i], nil
		}
	}

	for i := range courses {
		if strings.EqualFold(courses[i].Name, input) {
			return &courses[i], nil
		}
	}

	var matches []*domain.Course
	for i := range courses {
		if strings.HasPrefix(courses[i].ID, input) {
			matches = append(matches, &courses[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("course not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("course ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
