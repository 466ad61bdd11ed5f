package store

import (
	"strings"
	"sync"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// maxCascade caps chains of observers that keep calling SetState on
// themselves. Hitting the cap drops the update and reports it.
const maxCascade = 25

// AppState is the canonical in-memory application state. Snapshots handed to
// observers are copies: mutating one never affects the store.
type AppState struct {
	Courses     []domain.Course
	Completed   map[string]struct{}
	SearchQuery string
	Filter      domain.StatusFilter
	ViewMode    domain.ViewMode
	Layout      domain.LayoutHints
	Prefs       domain.Preferences
}

func (s AppState) clone() AppState {
	out := s
	out.Courses = make([]domain.Course, len(s.Courses))
	copy(out.Courses, s.Courses)
	out.Completed = make(map[string]struct{}, len(s.Completed))
	for id := range s.Completed {
		out.Completed[id] = struct{}{}
	}
	out.Layout = make(domain.LayoutHints, len(s.Layout))
	for id, p := range s.Layout {
		out.Layout[id] = p
	}
	return out
}

// Partial is a shallow merge applied by SetState; nil fields are left as-is.
type Partial struct {
	Courses     *[]domain.Course
	Completed   *map[string]struct{}
	SearchQuery *string
	Filter      *domain.StatusFilter
	ViewMode    *domain.ViewMode
	Layout      *domain.LayoutHints
	Prefs       *domain.Preferences
}

// Observer receives the full post-mutation snapshot after every SetState.
type Observer func(AppState)

// ErrorHook is told about recovered observer panics and dropped cascades.
type ErrorHook func(event string, recovered any)

// Store holds AppState and derives per-course status on demand. All
// mutations flow through SetState; notification passes run to completion
// without interleaving, and a SetState issued from inside an observer is
// queued behind the current pass.
type Store struct {
	mu        sync.Mutex
	state     AppState
	observers []subscription
	nextSub   int

	notifying bool
	queue     []Partial
	depth     int

	onError ErrorHook
}

type subscription struct {
	id int
	fn Observer
}

// New creates a Store with the given initial state.
func New(initial AppState) *Store {
	if initial.Completed == nil {
		initial.Completed = make(map[string]struct{})
	}
	if initial.Layout == nil {
		initial.Layout = make(domain.LayoutHints)
	}
	if initial.Filter == "" {
		initial.Filter = domain.FilterAll
	}
	if initial.ViewMode == "" {
		initial.ViewMode = domain.ViewList
	}
	return &Store{state: initial}
}

// SetErrorHook installs a hook for recovered observer failures.
func (s *Store) SetErrorHook(hook ErrorHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = hook
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers an observer and returns an unsubscribe func.
// Observers are notified in subscription order.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// SetState merges p into the current state, producing a new snapshot, then
// synchronously notifies every observer with that snapshot. Re-entrant calls
// from observers are deferred until the current pass completes.
func (s *Store) SetState(p Partial) {
	s.mu.Lock()
	if s.notifying {
		if s.depth >= maxCascade {
			hook := s.onError
			s.mu.Unlock()
			if hook != nil {
				hook("cascade_limit", nil)
			}
			return
		}
		s.depth++
		s.queue = append(s.queue, p)
		s.mu.Unlock()
		return
	}
	s.notifying = true
	s.mu.Unlock()

	s.apply(p)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.notifying = false
			s.depth = 0
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.apply(next)
	}
}

func (s *Store) apply(p Partial) {
	s.mu.Lock()
	st := s.state
	if p.Courses != nil {
		st.Courses = *p.Courses
	}
	if p.Completed != nil {
		st.Completed = *p.Completed
	}
	if p.SearchQuery != nil {
		st.SearchQuery = *p.SearchQuery
	}
	if p.Filter != nil {
		st.Filter = *p.Filter
	}
	if p.ViewMode != nil {
		st.ViewMode = *p.ViewMode
	}
	if p.Layout != nil {
		st.Layout = *p.Layout
	}
	if p.Prefs != nil {
		st.Prefs = *p.Prefs
	}
	s.state = st.clone()

	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	snapshot := s.state.clone()
	hook := s.onError
	s.mu.Unlock()

	for _, sub := range observers {
		s.notifyOne(sub, snapshot, hook)
	}
}

// notifyOne isolates a single observer invocation: a panic is recovered and
// reported so the rest of the fan-out still runs.
func (s *Store) notifyOne(sub subscription, snapshot AppState, hook ErrorHook) {
	defer func() {
		if r := recover(); r != nil && hook != nil {
			hook("observer_panic", r)
		}
	}()
	sub.fn(snapshot.clone())
}

// ToggleCompletion flips the local completion flag for id and notifies.
// It is optimistic: no remote round-trip is involved.
func (s *Store) ToggleCompletion(id string) bool {
	s.mu.Lock()
	completed := make(map[string]struct{}, len(s.state.Completed)+1)
	for k := range s.state.Completed {
		completed[k] = struct{}{}
	}
	_, was := completed[id]
	if was {
		delete(completed, id)
	} else {
		completed[id] = struct{}{}
	}
	s.mu.Unlock()

	s.SetState(Partial{Completed: &completed})
	return !was
}

// IsCompleted reports whether id is in the local completion set.
func (s *Store) IsCompleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Completed[id]
	return ok
}

// IsAvailable reports whether every dependency of c is completed. A course
// with no dependencies is always available; a completed course stays
// available.
func (s *Store) IsAvailable(c *domain.Course) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return available(c, s.state.Completed)
}

// StatusOf derives the course's classification from the completion set.
func (s *Store) StatusOf(c *domain.Course) domain.CourseStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Completed[c.ID]; ok {
		return domain.StatusCompleted
	}
	if available(c, s.state.Completed) {
		return domain.StatusAvailable
	}
	return domain.StatusLocked
}

func available(c *domain.Course, completed map[string]struct{}) bool {
	if _, ok := completed[c.ID]; ok {
		return true
	}
	for _, dep := range c.Dependencies {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}

// StatusOf derives a course's classification from an arbitrary snapshot,
// letting presentations classify without holding the store.
func StatusOf(c *domain.Course, state AppState) domain.CourseStatus {
	if _, ok := state.Completed[c.ID]; ok {
		return domain.StatusCompleted
	}
	if available(c, state.Completed) {
		return domain.StatusAvailable
	}
	return domain.StatusLocked
}

// Filtered returns the courses from state matching the active filter and
// search query, preserving their relative order.
func Filtered(state AppState) []domain.Course {
	out := make([]domain.Course, 0, len(state.Courses))
	for _, c := range state.Courses {
		if !matchesQuery(&c, state.SearchQuery) {
			continue
		}
		switch state.Filter {
		case domain.FilterCompleted:
			if StatusOf(&c, state) != domain.StatusCompleted {
				continue
			}
		case domain.FilterAvailable:
			if StatusOf(&c, state) != domain.StatusAvailable {
				continue
			}
		case domain.FilterLocked:
			if StatusOf(&c, state) != domain.StatusLocked {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func matchesQuery(c *domain.Course, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}
