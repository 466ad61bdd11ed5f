package testutil

import (
	"time"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/google/uuid"
)

// CourseOption mutates a fixture course.
type CourseOption func(*domain.Course)

// WithID pins the course id instead of generating one.
func WithID(id string) CourseOption {
	return func(c *domain.Course) { c.ID = id }
}

// WithDeps sets the course's prerequisite ids.
func WithDeps(ids ...string) CourseOption {
	return func(c *domain.Course) { c.Dependencies = ids }
}

// WithDescription sets the course description.
func WithDescription(desc string) CourseOption {
	return func(c *domain.Course) { c.Description = desc }
}

// NewCourse builds a course fixture with sensible defaults.
func NewCourse(name string, opts ...CourseOption) domain.Course {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	c := domain.Course{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// DiamondCatalog is the canonical four-course diamond: A, B(A), C(A), D(B,C),
// already in topological order.
func DiamondCatalog() []domain.Course {
	return []domain.Course{
		NewCourse("Foundations", WithID("A")),
		NewCourse("Branch One", WithID("B"), WithDeps("A")),
		NewCourse("Branch Two", WithID("C"), WithDeps("A")),
		NewCourse("Capstone", WithID("D"), WithDeps("B", "C")),
	}
}
