package service

import (
	"fmt"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// QueuedError signals that a mutating call failed for a connectivity reason
// and was queued for later replay. The caller's data is safe; it will sync
// when the authority is reachable again.
type QueuedError struct {
	Change domain.PendingChange
	Err    error
}

func (e *QueuedError) Error() string {
	return fmt.Sprintf("%s queued for later sync: %v", e.Change.Op, e.Err)
}

func (e *QueuedError) Unwrap() error { return e.Err }
