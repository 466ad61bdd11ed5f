package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/coursepath/internal/client"
	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/alexanderramin/coursepath/internal/persist"
	"github.com/alexanderramin/coursepath/internal/resolver"
	"github.com/alexanderramin/coursepath/internal/store"
)

type courseService struct {
	client   client.Client
	store    *store.Store
	gateway  *persist.Gateway
	observer UseCaseObserver

	searchDebounce *Debouncer
	unsubscribe    func()
}

// Options tunes optional collaborators of the course service.
type Options struct {
	Observer      UseCaseObserver
	DebounceDelay time.Duration
}

// NewCourseService wires the client, store and gateway together. It
// subscribes to the store so the completion set, preferences and layout are
// persisted (fire-and-forget) after every notification.
func NewCourseService(c client.Client, s *store.Store, g *persist.Gateway, opts Options) CourseService {
	if opts.Observer == nil {
		opts.Observer = NoopUseCaseObserver{}
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DebounceDelay
	}
	svc := &courseService{
		client:         c,
		store:          s,
		gateway:        g,
		observer:       opts.Observer,
		searchDebounce: NewDebouncer(opts.DebounceDelay),
	}
	svc.unsubscribe = s.Subscribe(func(snapshot store.AppState) {
		ctx := context.Background()
		g.SaveCompleted(ctx, snapshot.Completed)
		g.SaveLayout(ctx, snapshot.Layout)
		prefs := snapshot.Prefs
		prefs.ViewMode = snapshot.ViewMode
		prefs.LastFilter = snapshot.Filter
		prefs.LastQuery = snapshot.SearchQuery
		g.SavePreferences(ctx, prefs)
	})
	return svc
}

func (s *courseService) observe(ctx context.Context, name string, start time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(start),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
}

func (s *courseService) Load(ctx context.Context) error {
	start := time.Now()
	courses, err := s.client.List(ctx)
	s.observe(ctx, "load", start, err, map[string]any{"count": len(courses)})
	if err != nil {
		return err
	}
	s.store.SetState(store.Partial{Courses: &courses})
	return nil
}

func (s *courseService) Create(ctx context.Context, draft domain.CourseDraft) (*domain.Course, error) {
	start := time.Now()
	if err := draft.Validate(""); err != nil {
		return nil, err
	}

	created, err := s.client.Create(ctx, draft)
	if err != nil {
		err = s.maybeQueue(ctx, domain.PendingChange{Op: domain.OpCreate, Payload: draft}, err)
		s.observe(ctx, "create", start, err, nil)
		return nil, err
	}
	s.observe(ctx, "create", start, nil, map[string]any{"course_id": created.ID})

	snapshot := s.store.Snapshot()
	courses := append(snapshot.Courses, *created)
	s.store.SetState(store.Partial{Courses: &courses})
	return created, nil
}

func (s *courseService) Update(ctx context.Context, id string, draft domain.CourseDraft) (*domain.Course, error) {
	start := time.Now()
	if err := draft.Validate(id); err != nil {
		return nil, err
	}

	updated, err := s.client.Update(ctx, id, draft)
	if err != nil {
		err = s.maybeQueue(ctx, domain.PendingChange{Op: domain.OpUpdate, CourseID: id, Payload: draft}, err)
		s.observe(ctx, "update", start, err, map[string]any{"course_id": id})
		return nil, err
	}
	s.observe(ctx, "update", start, nil, map[string]any{"course_id": id})

	snapshot := s.store.Snapshot()
	courses := snapshot.Courses
	for i := range courses {
		if courses[i].ID == id {
			courses[i] = *updated
			break
		}
	}
	s.store.SetState(store.Partial{Courses: &courses})
	return updated, nil
}

func (s *courseService) Delete(ctx context.Context, id string, cascade bool) error {
	start := time.Now()
	err := s.client.Delete(ctx, id, cascade)
	if err != nil {
		if isNotFound(err) {
			// Already gone remotely; fall through and drop it locally.
			err = nil
		} else {
			err = s.maybeQueue(ctx, domain.PendingChange{Op: domain.OpDelete, CourseID: id, Cascade: cascade}, err)
			if err != nil {
				s.observe(ctx, "delete", start, err, map[string]any{"course_id": id})
				return err
			}
		}
	}
	s.observe(ctx, "delete", start, nil, map[string]any{"course_id": id, "cascade": cascade})

	snapshot := s.store.Snapshot()
	courses := make([]domain.Course, 0, len(snapshot.Courses))
	for _, c := range snapshot.Courses {
		if c.ID != id {
			courses = append(courses, c)
		}
	}
	s.store.SetState(store.Partial{Courses: &courses})
	return nil
}

// maybeQueue converts a connectivity failure on a mutating call into a
// queued pending change. Remote rejections pass through unchanged.
func (s *courseService) maybeQueue(ctx context.Context, change domain.PendingChange, cause error) error {
	var cerr *client.ConnectivityError
	if !errors.As(cause, &cerr) {
		return cause
	}
	if err := s.gateway.Enqueue(ctx, change); err != nil {
		return errors.Join(cause, err)
	}
	return &QueuedError{Change: change, Err: cause}
}

func (s *courseService) ToggleCompletion(id string) bool {
	return s.store.ToggleCompletion(id)
}

func (s *courseService) Levels(ctx context.Context) (*LevelPlan, error) {
	start := time.Now()
	order, err := s.client.TopologicalOrder(ctx)
	if err != nil {
		outcome := resolver.InterpretFailure(err)
		if outcome.Cycle != nil {
			s.observe(ctx, "levels", start, nil, map[string]any{"cycle": outcome.Cycle.Members})
			return &LevelPlan{Cycle: outcome.Cycle}, nil
		}
		s.observe(ctx, "levels", start, err, nil)
		return nil, outcome.Other.Err
	}

	levels, anomalies := resolver.Levelize(order)
	fields := map[string]any{"levels": len(levels)}
	if len(anomalies) > 0 {
		// Data-integrity anomaly: the authority handed us an order that
		// references ids outside itself.
		fields["anomalous_deps"] = anomalies
	}
	s.observe(ctx, "levels", start, nil, fields)
	return &LevelPlan{Levels: levels, Anomalies: anomalies}, nil
}

func (s *courseService) Search(ctx context.Context, query string) ([]domain.Course, error) {
	start := time.Now()
	results, err := s.client.Search(ctx, query)
	s.observe(ctx, "search", start, err, map[string]any{"query": query, "count": len(results)})
	if err != nil {
		return nil, err
	}
	s.store.SetState(store.Partial{SearchQuery: &query})
	return results, nil
}

// SearchDebounced coalesces rapid calls into one Search after the quiet
// period; deliver runs with the results. FlushSearch bypasses the remainder
// of the period.
func (s *courseService) SearchDebounced(query string, deliver func([]domain.Course, error)) {
	s.searchDebounce.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		deliver(s.Search(ctx, query))
	})
}

// FlushSearch runs a pending debounced search immediately.
func (s *courseService) FlushSearch() {
	s.searchDebounce.Flush()
}

func (s *courseService) Sync(ctx context.Context) (*SyncResult, error) {
	start := time.Now()
	before, err := s.gateway.Pending(ctx)
	if err != nil {
		s.observe(ctx, "sync", start, err, nil)
		return nil, err
	}

	drained, err := s.gateway.RetryPending(ctx, s.applyChange)
	if err != nil {
		s.observe(ctx, "sync", start, err, nil)
		return nil, err
	}

	after, err := s.gateway.Pending(ctx)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{
		Replayed:  len(before) - len(after),
		Remaining: len(after),
		Drained:   drained,
	}
	s.observe(ctx, "sync", start, nil, map[string]any{
		"replayed": result.Replayed, "remaining": result.Remaining,
	})

	if result.Replayed > 0 {
		if err := s.Load(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// applyChange replays one queued mutation. A not-found on update or delete
// counts as success: the course is already gone and the change is moot, so
// keeping it would wedge the queue.
func (s *courseService) applyChange(ctx context.Context, change domain.PendingChange) error {
	switch change.Op {
	case domain.OpCreate:
		_, err := s.client.Create(ctx, change.Payload)
		return err
	case domain.OpUpdate:
		_, err := s.client.Update(ctx, change.CourseID, change.Payload)
		if isNotFound(err) {
			return nil
		}
		return err
	case domain.OpDelete:
		err := s.client.Delete(ctx, change.CourseID, change.Cascade)
		if isNotFound(err) {
			return nil
		}
		return err
	default:
		return errors.New("unknown pending op: " + string(change.Op))
	}
}

// isNotFound reports whether err is the authority saying the course no
// longer exists.
func isNotFound(err error) bool {
	var rerr *client.RemoteError
	return errors.As(err, &rerr) && rerr.Kind == client.KindNotFound
}

func (s *courseService) Close() {
	s.searchDebounce.Stop()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}
