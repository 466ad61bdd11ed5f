package service

import (
	"context"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/alexanderramin/coursepath/internal/resolver"
)

// LevelPlan is the outcome of a leveling request. Exactly one of Levels or
// Cycle is meaningful: a detected cycle terminates the attempt with no
// partial levels.
type LevelPlan struct {
	Levels    [][]domain.Course
	Anomalies []string
	Cycle     *resolver.CycleReport
}

// SyncResult reports a pending-queue replay.
type SyncResult struct {
	Replayed  int
	Remaining int
	Drained   bool
}

// CourseService orchestrates the remote client, the reactive store and the
// persistence gateway. Mutations that fail for connectivity reasons are
// queued and surfaced as *QueuedError so callers can message "will sync
// later" instead of failing.
type CourseService interface {
	// Load fetches the catalog and replaces the store's course list.
	Load(ctx context.Context) error

	// Create validates and submits a new course, merging the authority's
	// copy into the store.
	Create(ctx context.Context, draft domain.CourseDraft) (*domain.Course, error)

	// Update validates and submits changed attributes for id.
	Update(ctx context.Context, id string, draft domain.CourseDraft) (*domain.Course, error)

	// Delete removes a course; cascade removes its dependents too.
	Delete(ctx context.Context, id string, cascade bool) error

	// ToggleCompletion optimistically flips the local completion flag and
	// reports the new value. Persistence is best-effort.
	ToggleCompletion(id string) bool

	// Levels fetches the topological order and partitions it into levels,
	// or reports the cycle the authority detected.
	Levels(ctx context.Context) (*LevelPlan, error)

	// Search returns matching courses in topological order and records the
	// query in the store.
	Search(ctx context.Context, query string) ([]domain.Course, error)

	// SearchDebounced coalesces rapid queries into one Search after a quiet
	// period; deliver receives the results.
	SearchDebounced(query string, deliver func([]domain.Course, error))

	// FlushSearch runs a pending debounced search immediately.
	FlushSearch()

	// Sync replays the pending queue and reloads the catalog when anything
	// was applied.
	Sync(ctx context.Context) (*SyncResult, error)

	// Close cancels outstanding timers owned by the service.
	Close()
}
