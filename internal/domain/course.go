package domain

import (
	"strings"
	"time"
)

const (
	// MaxNameLen is the longest accepted course name after trimming.
	MaxNameLen = 200
	// MaxDescriptionLen is the longest accepted course description.
	MaxDescriptionLen = 1000
)

// Course is a node in the prerequisite graph. The remote authority owns the
// structural graph: IDs and dependency edges are never invented locally.
type Course struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Dependencies []string  `json:"dependencies"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DependsOn reports whether id is a direct prerequisite of the course.
func (c *Course) DependsOn(id string) bool {
	for _, d := range c.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}

// DisplayID returns a short identifier for display, truncating long
// server-assigned ids to 8 characters.
func (c *Course) DisplayID() string {
	if len(c.ID) >= 8 {
		return c.ID[:8]
	}
	return c.ID
}

// CourseDraft is the client-side payload for create and update calls.
type CourseDraft struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies"`
}

// Validate checks the draft before it is ever submitted. selfID is the id of
// the course being edited, or empty on create. A failure never reaches the
// network.
func (d *CourseDraft) Validate(selfID string) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > MaxNameLen {
		return &ValidationError{Field: "name", Message: "name exceeds 200 characters"}
	}
	if len(d.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Message: "description exceeds 1000 characters"}
	}
	seen := make(map[string]bool, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		if selfID != "" && dep == selfID {
			return &ValidationError{Field: "dependencies", Message: "a course cannot depend on itself"}
		}
		if seen[dep] {
			return &ValidationError{Field: "dependencies", Message: "duplicate dependency: " + dep}
		}
		seen[dep] = true
	}
	return nil
}

// ValidationError reports a locally rejected field. It is handled at the
// form boundary and never enters the request layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
