package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/coursepath/internal/broadcast"
	"github.com/alexanderramin/coursepath/internal/client"
	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/alexanderramin/coursepath/internal/persist"
	"github.com/alexanderramin/coursepath/internal/service"
	"github.com/alexanderramin/coursepath/internal/store"
	"github.com/alexanderramin/coursepath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliHarness struct {
	app    *App
	remote *testutil.FakeCourseServer
	gw     *persist.Gateway
}

func newCLIHarness(t *testing.T, seed ...domain.Course) *cliHarness {
	t.Helper()
	remote := testutil.NewFakeCourseServer(t, seed...)
	gw := persist.NewGateway(testutil.NewTestDB(t), nil)
	st := store.New(store.AppState{})
	c := client.New(remote.URL(), client.WithSleeper(func(context.Context, time.Duration) {}))
	svc := service.NewCourseService(c, st, gw, service.Options{DebounceDelay: 5 * time.Millisecond})
	t.Cleanup(svc.Close)

	return &cliHarness{
		app: &App{
			Courses:   svc,
			Store:     st,
			Broadcast: broadcast.New(),
		},
		remote: remote,
		gw:     gw,
	}
}

func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(h.app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	root.SilenceUsage = true
	err := root.Execute()
	return out.String(), err
}

func TestListCmd_ShowsStatuses(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	out, err := h.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Foundations")
	assert.Contains(t, out, "Capstone")
	assert.Contains(t, out, "locked")
}

func TestListCmd_FilterValidation(t *testing.T) {
	h := newCLIHarness(t)
	_, err := h.run(t, "list", "--filter", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}

func TestListCmd_FilterAvailable(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	out, err := h.run(t, "list", "--filter", "available")
	require.NoError(t, err)
	assert.Contains(t, out, "Foundations")
	assert.NotContains(t, out, "Capstone")
}

func TestAddAndShow(t *testing.T) {
	h := newCLIHarness(t)
	out, err := h.run(t, "add", "--name", "Graph Theory", "--desc", "Paths and cycles")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Graph Theory")

	out, err = h.run(t, "show", "Graph Theory")
	require.NoError(t, err)
	assert.Contains(t, out, "Paths and cycles")
	assert.Contains(t, out, "start anytime")
}

func TestAddCmd_DependencyByName(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	_, err := h.run(t, "add", "--name", "Beyond Capstone", "--dep", "Capstone")
	require.NoError(t, err)

	var created *domain.Course
	for _, c := range h.remote.Courses() {
		if c.Name == "Beyond Capstone" {
			created = &c
			break
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, []string{"D"}, created.Dependencies)
}

func TestDoneCmd_TogglesAndPersists(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	out, err := h.run(t, "done", "Foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked Foundations complete")
	assert.Contains(t, h.gw.LoadCompleted(context.Background()), "A")

	out, err = h.run(t, "done", "Foundations")
	require.NoError(t, err)
	assert.Contains(t, out, "not complete")
}

func TestRmCmd_ExplainsDependents(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	_, err := h.run(t, "rm", "Foundations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depend on this one")
	assert.Contains(t, err.Error(), "--cascade")
}

func TestRmCmd_Cascade(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	out, err := h.run(t, "rm", "Foundations", "--cascade")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Foundations")
	assert.Empty(t, h.remote.Courses())
}

func TestLevelsCmd_GroupsDiamond(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	out, err := h.run(t, "levels")
	require.NoError(t, err)
	assert.Contains(t, out, "Level 1")
	assert.Contains(t, out, "Level 2")
	assert.Contains(t, out, "Level 3")
}

func TestLevelsCmd_CycleSurfaced(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	h.remote.SetCycle("A", "B")
	_, err := h.run(t, "levels")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
	assert.Contains(t, err.Error(), "A -> B")
}

func TestSearchCmd_TopologicalOrder(t *testing.T) {
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	out, err := h.run(t, "search", "branch")
	require.NoError(t, err)
	assert.Contains(t, out, "Branch One")
	assert.Contains(t, out, "Branch Two")
	assert.NotContains(t, out, "Capstone")
}

func TestSyncCmd_EmptyQueue(t *testing.T) {
	h := newCLIHarness(t)
	out, err := h.run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to sync")
}

func TestSyncCmd_ReplaysQueued(t *testing.T) {
	h := newCLIHarness(t)
	require.NoError(t, h.gw.Enqueue(context.Background(), domain.PendingChange{
		Op: domain.OpCreate, Payload: domain.CourseDraft{Name: "Queued Course"},
	}))

	out, err := h.run(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 1 queued change(s).")
	require.Len(t, h.remote.Courses(), 1)
	assert.Equal(t, "Queued Course", h.remote.Courses()[0].Name)
}

func TestResolveCourse_AmbiguousPrefix(t *testing.T) {
	h := newCLIHarness(t,
		testutil.NewCourse("One", testutil.WithID("course-1")),
		testutil.NewCourse("Two", testutil.WithID("course-2")),
	)
	_, err := h.run(t, "show", "course-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestImportCmd_CreatesInPrerequisiteOrder(t *testing.T) {
	h := newCLIHarness(t)
	path := writeCatalog(t, `{"courses": [
		{"name": "Calculus", "depends_on": ["Algebra"]},
		{"name": "Algebra"}
	]}`)

	out, err := h.run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 course(s)")

	courses := h.remote.Courses()
	require.Len(t, courses, 2)
	byName := make(map[string]domain.Course, len(courses))
	for _, c := range courses {
		byName[c.Name] = c
	}
	require.Contains(t, byName, "Calculus")
	assert.Equal(t, []string{byName["Algebra"].ID}, byName["Calculus"].Dependencies)
}

func TestImportCmd_RejectsInvalidCatalog(t *testing.T) {
	h := newCLIHarness(t)
	path := writeCatalog(t, `{"courses": [{"name": ""}]}`)

	out, err := h.run(t, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
	assert.Contains(t, out, "courses[0].name is required")
	assert.Empty(t, h.remote.Courses())
}
