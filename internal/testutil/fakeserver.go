package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/google/uuid"
)

// FakeCourseServer is an in-memory stand-in for the remote course authority.
// It implements the /resources collection plus the /resources/sorted search
// endpoint, and can be told to fail in controlled ways.
type FakeCourseServer struct {
	mu      sync.Mutex
	courses []domain.Course

	// FailNext makes the next n requests return 500.
	failNext int
	// CycleBody, when set, makes /resources/sorted return 409 with it.
	cycleBody map[string]any

	Server *httptest.Server
}

// NewFakeCourseServer starts a fake authority seeded with the given courses.
func NewFakeCourseServer(t *testing.T, seed ...domain.Course) *FakeCourseServer {
	t.Helper()
	f := &FakeCourseServer{courses: seed}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the fake authority's base URL.
func (f *FakeCourseServer) URL() string { return f.Server.URL }

// FailNext makes the next n requests fail with a 500.
func (f *FakeCourseServer) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// SetCycle makes the sorted endpoint report a cycle with the given members.
func (f *FakeCourseServer) SetCycle(members ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cycle := make([]any, 0, len(members))
	for _, m := range members {
		cycle = append(cycle, m)
	}
	f.cycleBody = map[string]any{
		"detail": "circular dependency detected",
		"cycle":  cycle,
	}
}

// Courses returns a copy of the current catalog.
func (f *FakeCourseServer) Courses() []domain.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Course, len(f.courses))
	copy(out, f.courses)
	return out
}

func (f *FakeCourseServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext > 0 {
		f.failNext--
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "induced failure"})
		return
	}

	switch {
	case r.URL.Path == "/resources/sorted":
		f.handleSorted(w, r)
	case r.URL.Path == "/resources" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, f.courses)
	case r.URL.Path == "/resources" && r.Method == http.MethodPost:
		f.handleCreate(w, r)
	case strings.HasPrefix(r.URL.Path, "/resources/"):
		f.handleItem(w, r, strings.TrimPrefix(r.URL.Path, "/resources/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "no such route"})
	}
}

func (f *FakeCourseServer) handleSorted(w http.ResponseWriter, r *http.Request) {
	if f.cycleBody != nil {
		writeJSON(w, http.StatusConflict, f.cycleBody)
		return
	}

	query := strings.ToLower(r.URL.Query().Get("q"))
	matched := make([]domain.Course, 0, len(f.courses))
	for _, c := range f.courses {
		if query == "" ||
			strings.Contains(strings.ToLower(c.Name), query) ||
			strings.Contains(strings.ToLower(c.Description), query) {
			matched = append(matched, c)
		}
	}
	writeJSON(w, http.StatusOK, topoSort(matched))
}

func (f *FakeCourseServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft domain.CourseDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "bad payload"})
		return
	}
	deps, unknown := f.resolveDeps(draft.Dependencies)
	if unknown != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "unknown dependency: " + unknown})
		return
	}
	now := time.Now().UTC()
	course := domain.Course{
		ID:           uuid.New().String(),
		Name:         draft.Name,
		Description:  draft.Description,
		Dependencies: deps,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.courses = append(f.courses, course)
	writeJSON(w, http.StatusCreated, course)
}

func (f *FakeCourseServer) handleItem(w http.ResponseWriter, r *http.Request, id string) {
	idx := -1
	for i, c := range f.courses {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "resource not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, f.courses[idx])
	case http.MethodPut:
		var draft domain.CourseDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "bad payload"})
			return
		}
		deps, unknown := f.resolveDeps(draft.Dependencies)
		if unknown != "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "unknown dependency: " + unknown})
			return
		}
		f.courses[idx].Name = draft.Name
		f.courses[idx].Description = draft.Description
		f.courses[idx].Dependencies = deps
		f.courses[idx].UpdatedAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, f.courses[idx])
	case http.MethodDelete:
		cascade := r.URL.Query().Get("cascade") == "true"
		dependents := f.dependentsOf(id)
		if len(dependents) > 0 && !cascade {
			writeJSON(w, http.StatusConflict, map[string]any{
				"detail":     "dependents exist",
				"dependents": dependents,
			})
			return
		}
		doomed := map[string]bool{id: true}
		for _, d := range dependents {
			doomed[d] = true
		}
		kept := f.courses[:0]
		for _, c := range f.courses {
			if !doomed[c.ID] {
				kept = append(kept, c)
			}
		}
		f.courses = kept
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "unsupported method"})
	}
}

// resolveDeps maps dependency values to ids the way the authority does: an
// exact id match first, then an exact name match. Returns the first value
// that resolves to nothing.
func (f *FakeCourseServer) resolveDeps(vals []string) ([]string, string) {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		id := ""
		for _, c := range f.courses {
			if c.ID == v {
				id = c.ID
				break
			}
		}
		if id == "" {
			for _, c := range f.courses {
				if c.Name == v {
					id = c.ID
					break
				}
			}
		}
		if id == "" {
			return nil, v
		}
		out = append(out, id)
	}
	return out, ""
}

// dependentsOf returns ids of courses depending on id, transitively.
func (f *FakeCourseServer) dependentsOf(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	changed := true
	for changed {
		changed = false
		for _, c := range f.courses {
			if seen[c.ID] {
				continue
			}
			for _, dep := range c.Dependencies {
				if seen[dep] {
					seen[c.ID] = true
					out = append(out, c.ID)
					changed = true
					break
				}
			}
		}
	}
	return out
}

// topoSort orders courses so prerequisites precede dependents (Kahn's
// algorithm, ignoring edges to courses outside the slice).
func topoSort(courses []domain.Course) []domain.Course {
	inSet := make(map[string]bool, len(courses))
	for _, c := range courses {
		inSet[c.ID] = true
	}
	indegree := make(map[string]int, len(courses))
	for _, c := range courses {
		for _, dep := range c.Dependencies {
			if inSet[dep] {
				indegree[c.ID]++
			}
		}
	}

	out := make([]domain.Course, 0, len(courses))
	remaining := append([]domain.Course(nil), courses...)
	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, c := range remaining {
			if indegree[c.ID] == 0 {
				out = append(out, c)
				progressed = true
				for _, other := range courses {
					if other.DependsOn(c.ID) {
						indegree[other.ID]--
					}
				}
			} else {
				next = append(next, c)
			}
		}
		remaining = next
		if !progressed {
			// Cycle in seed data; tests should use SetCycle instead.
			return append(out, remaining...)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
