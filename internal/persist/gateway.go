package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// Logical record keys. Values are JSON-shaped structures.
const (
	KeyPreferences = "preferences"
	KeyCompleted   = "completedCourses"
	KeyLayout      = "graphLayout"
)

// Gateway reads and writes the named local records and owns the
// pending-change queue. It never talks to the network. The convenience
// wrappers are best-effort: a storage failure is logged, never raised, so
// the in-memory store stays authoritative for the session.
type Gateway struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGateway creates a Gateway over an opened database. A nil logger
// discards persistence warnings.
func NewGateway(db *sql.DB, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{db: db, logger: logger}
}

// Save writes value under key, replacing any previous record.
func (g *Gateway) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding record %q: %w", key, err)
	}
	_, err = g.db.ExecContext(ctx,
		`INSERT INTO kv_records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving record %q: %w", key, err)
	}
	return nil
}

// Load reads the record under key into into. It reports false when no
// record exists, leaving into untouched.
func (g *Gateway) Load(ctx context.Context, key string, into any) (bool, error) {
	var raw string
	err := g.db.QueryRowContext(ctx,
		`SELECT value FROM kv_records WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading record %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return false, fmt.Errorf("decoding record %q: %w", key, err)
	}
	return true, nil
}

// Remove deletes the record under key if present.
func (g *Gateway) Remove(ctx context.Context, key string) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM kv_records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing record %q: %w", key, err)
	}
	return nil
}

// SavePreferences persists the user's display settings, best-effort.
func (g *Gateway) SavePreferences(ctx context.Context, p domain.Preferences) {
	if err := g.Save(ctx, KeyPreferences, p); err != nil {
		g.logger.Warn("persist_failed", "key", KeyPreferences, "error", err.Error())
	}
}

// LoadPreferences returns the persisted settings, or the defaults.
func (g *Gateway) LoadPreferences(ctx context.Context) domain.Preferences {
	prefs := domain.DefaultPreferences()
	found, err := g.Load(ctx, KeyPreferences, &prefs)
	if err != nil {
		g.logger.Warn("load_failed", "key", KeyPreferences, "error", err.Error())
		return domain.DefaultPreferences()
	}
	if !found {
		return domain.DefaultPreferences()
	}
	return prefs
}

// SaveCompleted persists the completion set as an id array, best-effort.
func (g *Gateway) SaveCompleted(ctx context.Context, completed map[string]struct{}) {
	ids := make([]string, 0, len(completed))
	for id := range completed {
		ids = append(ids, id)
	}
	if err := g.Save(ctx, KeyCompleted, ids); err != nil {
		g.logger.Warn("persist_failed", "key", KeyCompleted, "error", err.Error())
	}
}

// LoadCompleted returns the persisted completion set, empty when absent.
func (g *Gateway) LoadCompleted(ctx context.Context) map[string]struct{} {
	var ids []string
	if _, err := g.Load(ctx, KeyCompleted, &ids); err != nil {
		g.logger.Warn("load_failed", "key", KeyCompleted, "error", err.Error())
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// SaveLayout persists graph node positions, best-effort.
func (g *Gateway) SaveLayout(ctx context.Context, layout domain.LayoutHints) {
	if err := g.Save(ctx, KeyLayout, layout); err != nil {
		g.logger.Warn("persist_failed", "key", KeyLayout, "error", err.Error())
	}
}

// LoadLayout returns persisted graph positions, empty when absent.
func (g *Gateway) LoadLayout(ctx context.Context) domain.LayoutHints {
	layout := make(domain.LayoutHints)
	if _, err := g.Load(ctx, KeyLayout, &layout); err != nil {
		g.logger.Warn("load_failed", "key", KeyLayout, "error", err.Error())
	}
	return layout
}
