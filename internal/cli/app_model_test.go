package cli

import (
	"testing"

	"github.com/alexanderramin/coursepath/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) *appModel {
	t.Helper()
	h := newCLIHarness(t, testutil.DiamondCatalog()...)
	require.NoError(t, h.app.Courses.Load(t.Context()))

	m := newAppModel(h.app)
	if cmd := m.Init(); cmd != nil {
		if msg := cmd(); msg != nil {
			m.Update(msg)
		}
	}
	t.Cleanup(m.teardown)
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestAppModel_ListCursorHighlightsTimeline(t *testing.T) {
	m := newTestModel(t)
	require.NotEmpty(t, m.list.courses)
	require.NotEmpty(t, m.levels.rows)

	m.Update(key("j"))
	moved := m.list.cursorID()
	require.NotEmpty(t, moved)
	assert.Equal(t, moved, m.levels.highlighted,
		"timeline pane mirrors the list pane's hover through the broadcaster")
	assert.Equal(t, moved, m.list.highlighted,
		"announcing pane receives its own announcement too")
}

func TestAppModel_RepeatedHoverThenClear(t *testing.T) {
	m := newTestModel(t)

	id := m.list.cursorID()
	m.app.Broadcast.Announce(id, true)
	m.app.Broadcast.Announce(id, true)
	m.app.Broadcast.Announce(id, false)

	assert.Empty(t, m.levels.highlighted, "a single clear fully reverses repeated hovers")
	assert.Empty(t, m.list.highlighted)
}

func TestAppModel_TabSwitchesPane(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, focusList, m.focus)

	m.Update(key("tab"))
	assert.Equal(t, focusLevels, m.focus)
	assert.Equal(t, m.levels.cursorID(), m.list.highlighted,
		"switching panes announces the new pane's cursor")

	m.Update(key("tab"))
	assert.Equal(t, focusList, m.focus)
}

func TestAppModel_SpaceTogglesCompletion(t *testing.T) {
	m := newTestModel(t)
	id := m.list.cursorID()
	require.NotEmpty(t, id)

	m.Update(key(" "))
	assert.True(t, m.app.Store.IsCompleted(id))

	m.Update(key(" "))
	assert.False(t, m.app.Store.IsCompleted(id))
}

func TestAppModel_ViewRendersBothPanes(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	assert.Contains(t, view, "Courses")
	assert.Contains(t, view, "Timeline")
	assert.Contains(t, view, "Foundations")
}

func TestAppModel_SearchSharesOneResultsChannel(t *testing.T) {
	m := newTestModel(t)

	m.Update(key("/"))
	require.True(t, m.listening, "entering search arms the single listener")
	require.Equal(t, focusSearch, m.focus)

	// Rapid keystrokes coalesce; the superseded trigger never runs, so the
	// only completion comes from the flushed query.
	m.Update(key("a"))
	m.Update(key("b"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg := m.awaitSearch()()
	result, ok := msg.(searchResultsMsg)
	require.True(t, ok)
	require.NoError(t, result.err)
	assert.Equal(t, "ab", result.query)

	select {
	case extra := <-m.results:
		t.Fatalf("unexpected second result %q", extra.query)
	default:
	}

	// The same channel serves every later search.
	m.Update(key("/"))
	m.Update(key("c"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg = m.awaitSearch()()
	result, ok = msg.(searchResultsMsg)
	require.True(t, ok)
	assert.Equal(t, "abc", result.query)
}
