package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	focusList = iota
	focusLevels
	focusSearch
)

// appModel is the root bubbletea Model for the interactive UI. It hosts two
// independent panes over the same store snapshot; hover synchronization
// between them flows through the app's Broadcaster, never pane-to-pane.
type appModel struct {
	app    *App
	list   *listPane
	levels *levelsPane
	search textinput.Model

	// results is the single channel debounced search completions arrive
	// on; one listener command at a time blocks on it (see awaitSearch).
	results   chan searchResultsMsg
	listening bool

	focus    int
	width    int
	height   int
	status   string
	quitting bool

	unsubs []func()
}

// searchResultsMsg delivers a debounced search completion.
type searchResultsMsg struct {
	query string
	err   error
}

// levelsLoadedMsg delivers the level plan for the timeline pane.
type levelsLoadedMsg struct {
	levels [][]domain.Course
	cycle  []string
	err    error
}

// storeChangedMsg asks panes to re-derive rows from a fresh snapshot.
type storeChangedMsg struct{}

func newAppModel(app *App) *appModel {
	search := textinput.New()
	search.Placeholder = "search courses"
	search.Prompt = "/ "
	search.CharLimit = 80

	m := &appModel{
		app:     app,
		list:    newListPane(app),
		levels:  newLevelsPane(app),
		search:  search,
		results: make(chan searchResultsMsg, 1),
	}

	// Each pane registers its own highlight handler; Announce fans out to
	// both so the announcing pane's own state stays consistent too.
	m.unsubs = append(m.unsubs,
		app.Broadcast.OnAnnounce(m.list.setHighlight),
		app.Broadcast.OnAnnounce(m.levels.setHighlight),
	)
	return m
}

func (m *appModel) teardown() {
	for _, unsub := range m.unsubs {
		unsub()
	}
}

func (m *appModel) Init() tea.Cmd {
	m.list.refresh()
	return m.loadLevels()
}

func (m *appModel) loadLevels() tea.Cmd {
	return func() tea.Msg {
		plan, err := m.app.Courses.Levels(context.Background())
		if err != nil {
			return levelsLoadedMsg{err: err}
		}
		if plan.Cycle != nil {
			return levelsLoadedMsg{cycle: plan.Cycle.Members}
		}
		return levelsLoadedMsg{levels: plan.Levels}
	}
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case levelsLoadedMsg:
		m.levels.apply(msg)
		if msg.err != nil {
			m.status = "levels unavailable: " + msg.err.Error()
		}
		return m, nil

	case searchResultsMsg:
		if msg.err != nil {
			m.status = "search failed: " + msg.err.Error()
			return m, m.awaitSearch()
		}
		m.status = fmt.Sprintf("filtered by %q", msg.query)
		return m, tea.Batch(m.awaitSearch(), func() tea.Msg { return storeChangedMsg{} })

	case storeChangedMsg:
		m.list.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.teardown()
		m.quitting = true
		return m, tea.Quit

	case "tab":
		if m.focus == focusList {
			m.focus = focusLevels
			m.levels.announceCursor(true)
		} else {
			m.focus = focusList
			m.list.announceCursor(true)
		}
		return m, nil

	case "/":
		m.focus = focusSearch
		m.search.Focus()
		if !m.listening {
			m.listening = true
			return m, tea.Batch(textinput.Blink, m.awaitSearch())
		}
		return m, textinput.Blink

	case "r":
		if err := m.app.Courses.Load(context.Background()); err != nil {
			m.status = "refresh failed: " + err.Error()
			return m, nil
		}
		m.list.refresh()
		return m, m.loadLevels()

	case "j", "down":
		m.activePane().move(1)
		return m, nil

	case "k", "up":
		m.activePane().move(-1)
		return m, nil

	case " ":
		if id := m.activePane().cursorID(); id != "" {
			m.app.Courses.ToggleCompletion(id)
			m.list.refresh()
		}
		return m, nil
	}

	return m, nil
}

func (m *appModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusList
		m.search.Blur()
		return m, nil

	case "enter":
		// Explicit confirmation bypasses the remaining quiet period.
		m.app.Courses.FlushSearch()
		m.focus = focusList
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	query := m.search.Value()
	m.app.Courses.SearchDebounced(query, func(_ []domain.Course, err error) {
		m.publishSearch(searchResultsMsg{query: query, err: err})
	})
	return m, cmd
}

// awaitSearch is the single long-lived listener for debounced search
// completions. It re-arms itself via the searchResultsMsg case in Update, so
// at most one goroutine ever blocks on the channel.
func (m *appModel) awaitSearch() tea.Cmd {
	return func() tea.Msg { return <-m.results }
}

// publishSearch hands a completion to the listener without blocking the
// debounce timer. An unconsumed older result is replaced by the newer one.
func (m *appModel) publishSearch(msg searchResultsMsg) {
	select {
	case <-m.results:
	default:
	}
	select {
	case m.results <- msg:
	default:
	}
}

// pane is the common surface of the two presentations.
type pane interface {
	move(delta int)
	cursorID() string
	announceCursor(active bool)
}

func (m *appModel) activePane() pane {
	if m.focus == focusLevels {
		return m.levels
	}
	return m.list
}

var (
	paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("205"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m *appModel) View() string {
	if m.quitting {
		return ""
	}

	listBox := paneStyle
	levelsBox := paneStyle
	switch m.focus {
	case focusList:
		listBox = focusedPaneStyle
	case focusLevels:
		levelsBox = focusedPaneStyle
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBox.Render(m.list.view()),
		levelsBox.Render(m.levels.view()),
	)

	lines := panes + "\n" + m.search.View()
	if m.status != "" {
		lines += "\n" + statusStyle.Render(m.status)
	}
	lines += "\n" + statusStyle.Render("tab: switch pane · space: toggle done · /: search · r: refresh · q: quit")
	return lines
}

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive list and level timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("ui requires an interactive terminal")
			}
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}
			program := tea.NewProgram(newAppModel(app), tea.WithAltScreen())
			_, err := program.Run()
			return err
		},
	}
}
