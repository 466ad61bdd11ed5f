package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// ValidateCatalog checks the catalog for errors before any course is
// submitted. Returns a slice of all validation errors found.
//
// Dependencies that name a course defined in the same file are checked for
// cycles. Dependencies that do not are assumed to reference courses already
// held by the authority and are left for it to resolve.
func ValidateCatalog(schema *CatalogSchema) []error {
	var errs []error

	if len(schema.Courses) == 0 {
		return []error{fmt.Errorf("catalog has no courses")}
	}

	names := make(map[string]bool, len(schema.Courses))
	for i, c := range schema.Courses {
		prefix := fmt.Sprintf("courses[%d]", i)

		name := strings.TrimSpace(c.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else if len(name) > domain.MaxNameLen {
			errs = append(errs, fmt.Errorf("%s.name exceeds %d characters", prefix, domain.MaxNameLen))
		} else if names[name] {
			errs = append(errs, fmt.Errorf("%s.name: duplicate name %q", prefix, name))
		} else {
			names[name] = true
		}

		if len(c.Description) > domain.MaxDescriptionLen {
			errs = append(errs, fmt.Errorf("%s.description exceeds %d characters", prefix, domain.MaxDescriptionLen))
		}

		seen := make(map[string]bool, len(c.DependsOn))
		for _, dep := range c.DependsOn {
			if dep == "" {
				errs = append(errs, fmt.Errorf("%s.depends_on: empty dependency", prefix))
				continue
			}
			if dep == name {
				errs = append(errs, fmt.Errorf("%s.depends_on: self-dependency %q", prefix, dep))
			}
			if seen[dep] {
				errs = append(errs, fmt.Errorf("%s.depends_on: duplicate dependency %q", prefix, dep))
			}
			seen[dep] = true
		}
	}

	errs = append(errs, detectCycles(schema.Courses, names)...)

	return errs
}

// detectCycles runs a DFS over the dependency edges between courses defined
// in the file. Edges into courses outside the file cannot form a cycle among
// the file's courses and are ignored.
func detectCycles(courses []CourseImport, names map[string]bool) []error {
	graph := make(map[string][]string)
	for _, c := range courses {
		for _, dep := range c.DependsOn {
			if dep != c.Name && names[dep] {
				graph[dep] = append(graph[dep], c.Name)
			}
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, neighbor := range graph[node] {
			if color[neighbor] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q", node, neighbor))
				return true
			}
			if color[neighbor] == white {
				if visit(neighbor) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	for _, c := range courses {
		if names[c.Name] && color[c.Name] == white {
			visit(c.Name)
		}
	}

	return errs
}
