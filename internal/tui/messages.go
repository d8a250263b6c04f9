package tui

import "github.com/Veraticus/platewise/internal/model"

type historyLoadedMsg struct {
	err     error
	entries []model.DisplayEntry
}

type recordLoadedMsg struct {
	err    error
	record model.HistoryRecord
}

type recordDeletedMsg struct {
	err     error
	id      model.HistoryID
	removed bool
}
