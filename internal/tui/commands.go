package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/platewise/internal/model"
)

const storageTimeout = 10 * time.Second

func (m Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storageTimeout)
		defer cancel()

		entries, err := m.store.Render(ctx)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m Model) loadRecord(id model.HistoryID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storageTimeout)
		defer cancel()

		record, err := m.store.Get(ctx, id)
		return recordLoadedMsg{record: record, err: err}
	}
}

func (m Model) deleteRecord(id model.HistoryID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, storageTimeout)
		defer cancel()

		removed, err := m.store.Delete(ctx, id)
		return recordDeletedMsg{id: id, removed: removed, err: err}
	}
}
