package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// Drafts converts a validated catalog into drafts in creation order: every
// course defined in the file is emitted after all of its in-file
// prerequisites, so the authority sees each dependency name only once it
// exists. Call ValidateCatalog first; Drafts assumes the catalog is valid.
//
// Dependency values pass through untouched. The authority resolves each one
// by name or id.
func Drafts(schema *CatalogSchema) ([]domain.CourseDraft, error) {
	names := make(map[string]bool, len(schema.Courses))
	for _, c := range schema.Courses {
		names[c.Name] = true
	}

	emitted := make(map[string]bool, len(schema.Courses))
	remaining := append([]CourseImport(nil), schema.Courses...)
	out := make([]domain.CourseDraft, 0, len(schema.Courses))

	for len(remaining) > 0 {
		next := remaining[:0]
		progressed := false
		for _, c := range remaining {
			if inFileDepsEmitted(c, names, emitted) {
				out = append(out, domain.CourseDraft{
					Name:         strings.TrimSpace(c.Name),
					Description:  c.Description,
					Dependencies: append([]string(nil), c.DependsOn...),
				})
				emitted[c.Name] = true
				progressed = true
			} else {
				next = append(next, c)
			}
		}
		if !progressed {
			return nil, fmt.Errorf("circular dependency among %d course(s)", len(next))
		}
		remaining = next
	}

	return out, nil
}

func inFileDepsEmitted(c CourseImport, names, emitted map[string]bool) bool {
	for _, dep := range c.DependsOn {
		if names[dep] && !emitted[dep] {
			return false
		}
	}
	return true
}
