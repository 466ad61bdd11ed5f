package domain

import "time"

// PendingChange is a mutating call that failed for a connectivity reason,
// queued locally for later replay. The persistence gateway owns the queue
// until the change is successfully replayed, then discards it.
type PendingChange struct {
	ID       string      `json:"id"`
	Op       ChangeOp    `json:"op"`
	CourseID string      `json:"course_id,omitempty"`
	Payload  CourseDraft `json:"payload"`
	QueuedAt time.Time   `json:"queued_at"`

	// Cascade carries a delete's remove-dependents flag through replay.
	Cascade bool `json:"cascade,omitempty"`
}
