package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/google/uuid"
)

// Applier replays one queued change against the remote authority.
type Applier func(ctx context.Context, change domain.PendingChange) error

// Enqueue appends a change to the pending queue, generating an id and
// timestamp when missing.
func (g *Gateway) Enqueue(ctx context.Context, change domain.PendingChange) error {
	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if change.QueuedAt.IsZero() {
		change.QueuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(change.Payload)
	if err != nil {
		return fmt.Errorf("encoding pending payload: %w", err)
	}
	cascade := 0
	if change.Cascade {
		cascade = 1
	}
	_, err = g.db.ExecContext(ctx,
		`INSERT INTO pending_changes (id, op, course_id, payload, queued_at, cascade_delete) VALUES (?, ?, ?, ?, ?, ?)`,
		change.ID, string(change.Op), change.CourseID, string(payload),
		change.QueuedAt.Format(time.RFC3339Nano), cascade)
	if err != nil {
		return fmt.Errorf("enqueueing pending change: %w", err)
	}
	return nil
}

// Pending returns the queued changes in enqueue order.
func (g *Gateway) Pending(ctx context.Context) ([]domain.PendingChange, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, op, course_id, payload, queued_at, cascade_delete FROM pending_changes ORDER BY queued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing pending changes: %w", err)
	}
	defer rows.Close()
	return scanPending(rows)
}

// RetryPending replays every queued change through applier, removes only the
// ones that succeed, and reports whether the queue is now empty. The first
// error per change is logged and the change kept for the next retry.
func (g *Gateway) RetryPending(ctx context.Context, applier Applier) (bool, error) {
	pending, err := g.Pending(ctx)
	if err != nil {
		return false, err
	}

	remaining := 0
	for _, change := range pending {
		if err := applier(ctx, change); err != nil {
			g.logger.Warn("pending_replay_failed",
				"change_id", change.ID, "op", string(change.Op), "error", err.Error())
			remaining++
			continue
		}
		if err := g.deletePending(ctx, change.ID); err != nil {
			return false, err
		}
	}
	return remaining == 0, nil
}

func (g *Gateway) deletePending(ctx context.Context, id string) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM pending_changes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing pending change: %w", err)
	}
	return nil
}

func scanPending(rows *sql.Rows) ([]domain.PendingChange, error) {
	var changes []domain.PendingChange
	for rows.Next() {
		var c domain.PendingChange
		var op, payload, queuedAt string
		var cascade int
		if err := rows.Scan(&c.ID, &op, &c.CourseID, &payload, &queuedAt, &cascade); err != nil {
			return nil, fmt.Errorf("scanning pending change: %w", err)
		}
		c.Op = domain.ChangeOp(op)
		c.Cascade = cascade != 0
		if err := json.Unmarshal([]byte(payload), &c.Payload); err != nil {
			return nil, fmt.Errorf("decoding pending payload: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, queuedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing pending timestamp: %w", err)
		}
		c.QueuedAt = ts
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending changes: %w", err)
	}
	return changes, nil
}
