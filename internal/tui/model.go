// Package tui implements an interactive browser for saved analyses.
package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/platewise/internal/cli"
	"github.com/Veraticus/platewise/internal/history"
	"github.com/Veraticus/platewise/internal/model"
)

// HistoryStore is the part of the history store the browser needs.
type HistoryStore interface {
	Render(ctx context.Context) ([]model.DisplayEntry, error)
	Get(ctx context.Context, id model.HistoryID) (model.HistoryRecord, error)
	Delete(ctx context.Context, id model.HistoryID) (bool, error)
}

// State represents the current screen.
type State int

// Screens.
const (
	StateList State = iota
	StateDetail
	StateConfirmDelete
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 6
)

// Model holds the browser state.
type Model struct {
	ctx      context.Context
	store    HistoryStore
	err      error
	keymap   KeyMap
	status   string
	entries  []model.DisplayEntry
	table    table.Model
	viewport viewport.Model
	help     help.Model
	spinner  spinner.Model
	pending  model.HistoryID
	state    State
	width    int
	height   int
	loading  bool
	quitting bool
}

func newModel(ctx context.Context, store HistoryStore) Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(defaultHeight-chromeHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = cli.TableHeaderStyle
	styles.Selected = styles.Selected.Foreground(cli.PrimaryColor)
	t.SetStyles(styles)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		store:    store,
		keymap:   DefaultKeyMap(),
		table:    t,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		help:     help.New(),
		spinner:  s,
		width:    defaultWidth,
		height:   defaultHeight,
		loading:  true,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 15},
		{Title: "Saved", Width: 18},
		{Title: "Images", Width: 7},
		{Title: "Foods", Width: 6},
		{Title: "Calories", Width: 10},
	}
}

func rows(entries []model.DisplayEntry) []table.Row {
	out := make([]table.Row, len(entries))
	for i, e := range entries {
		saved := e.Timestamp
		if !e.Time.IsZero() {
			saved = e.Time.Local().Format("2006-01-02 15:04")
		}
		out[i] = table.Row{
			e.ID.String(),
			saved,
			strconv.Itoa(e.ImageCount),
			strconv.Itoa(e.FoodCount),
			fmt.Sprintf("%.0f kcal", e.TotalCalories),
		}
	}
	return out
}

// Init loads the history.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadHistory())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case historyLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.table.SetRows(rows(msg.entries))
			if m.table.Cursor() >= len(msg.entries) {
				m.table.SetCursor(max(len(msg.entries)-1, 0))
			}
		}
		return m, nil

	case recordLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		entry := history.Describe(msg.record, nil)
		m.viewport.SetContent(cli.RenderRecord(msg.record, entry))
		m.viewport.GotoTop()
		m.state = StateDetail
		return m, nil

	case recordDeletedMsg:
		m.state = StateList
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.removed {
			m.status = fmt.Sprintf("Deleted session %s", msg.id)
		} else {
			m.status = fmt.Sprintf("Session %s was already gone", msg.id)
		}
		m.loading = true
		return m, m.loadHistory()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.table.SetHeight(max(height-chromeHeight, 1))
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 1)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case StateConfirmDelete:
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			return m, m.deleteRecord(m.pending)
		case key.Matches(msg, m.keymap.Cancel):
			m.state = StateList
			m.status = ""
		}
		return m, nil

	case StateDetail:
		switch {
		case key.Matches(msg, m.keymap.Back):
			m.state = StateList
			return m, nil
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Refresh):
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.loadHistory())
	case key.Matches(msg, m.keymap.Open):
		if id, ok := m.selectedID(); ok {
			m.loading = true
			m.err = nil
			return m, m.loadRecord(id)
		}
		return m, nil
	case key.Matches(msg, m.keymap.Delete):
		if id, ok := m.selectedID(); ok {
			m.pending = id
			m.state = StateConfirmDelete
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) selectedID() (model.HistoryID, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.entries) {
		return 0, false
	}
	return m.entries[cursor].ID, true
}
