package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/history"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/testutil"
)

type fakeStore struct {
	renderErr error
	records   map[model.HistoryID]model.HistoryRecord
	deleted   []model.HistoryID
}

func newFakeStore(records ...model.HistoryRecord) *fakeStore {
	s := &fakeStore{records: map[model.HistoryID]model.HistoryRecord{}}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeStore) Render(context.Context) ([]model.DisplayEntry, error) {
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	records := make([]model.HistoryRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	return history.Summarize(records, nil, history.DisplayLimit), nil
}

func (s *fakeStore) Get(_ context.Context, id model.HistoryID) (model.HistoryRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return model.HistoryRecord{}, common.ErrNotFound
	}
	return r, nil
}

func (s *fakeStore) Delete(_ context.Context, id model.HistoryID) (bool, error) {
	s.deleted = append(s.deleted, id)
	_, ok := s.records[id]
	delete(s.records, id)
	return ok, nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// step applies msg and then runs any returned command once, feeding its
// message back in. Batch commands are skipped since they only carry ticks.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd == nil {
		return m
	}
	next := cmd()
	switch next.(type) {
	case historyLoadedMsg, recordLoadedMsg, recordDeletedMsg:
		return step(t, m, next)
	}
	return m
}

func loadedModel(t *testing.T, store *fakeStore) Model {
	t.Helper()
	m := newModel(context.Background(), store)
	return step(t, m, m.loadHistory()())
}

func sampleStore() *fakeStore {
	older := testutil.NewRecord(1000, "2024-06-09T10:00:00.000Z").
		WithEnrichedResult("toast.jpg", testutil.RawFoods("bread", 60), testutil.Food("bread", 60)).
		Build()
	newer := testutil.NewRecord(2000, "2024-06-10T10:00:00.000Z").
		WithEnrichedResult("apple.jpg", testutil.RawFoods("apple", 150), testutil.Food("apple", 150)).
		Build()
	return newFakeStore(older, newer)
}

func TestModel_LoadsHistoryNewestFirst(t *testing.T) {
	m := loadedModel(t, sampleStore())

	assert.False(t, m.loading)
	require.Len(t, m.entries, 2)
	assert.Equal(t, model.HistoryID(2000), m.entries[0].ID)

	id, ok := m.selectedID()
	require.True(t, ok)
	assert.Equal(t, model.HistoryID(2000), id)
	assert.Contains(t, m.View(), "2 session(s)")
}

func TestModel_EmptyHistory(t *testing.T) {
	m := loadedModel(t, newFakeStore())

	_, ok := m.selectedID()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No saved analyses yet.")

	m = step(t, m, keyRune('d'))
	assert.Equal(t, StateList, m.state)
}

func TestModel_LoadError(t *testing.T) {
	store := newFakeStore()
	store.renderErr = errors.New("disk on fire")

	m := loadedModel(t, store)
	assert.Contains(t, m.View(), "disk on fire")
}

func TestModel_OpenAndCloseDetail(t *testing.T) {
	m := loadedModel(t, sampleStore())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateDetail, m.state)
	assert.Contains(t, m.View(), "Session 2000")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateList, m.state)
}

func TestModel_DeleteConfirmed(t *testing.T) {
	store := sampleStore()
	m := loadedModel(t, store)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = step(t, m, keyRune('d'))
	require.Equal(t, StateConfirmDelete, m.state)
	assert.Contains(t, m.View(), "Delete session 1000?")

	m = step(t, m, keyRune('y'))
	assert.Equal(t, []model.HistoryID{1000}, store.deleted)
	assert.Equal(t, StateList, m.state)
	assert.Equal(t, "Deleted session 1000", m.status)
	require.Len(t, m.entries, 1)
	assert.Equal(t, model.HistoryID(2000), m.entries[0].ID)
}

func TestModel_DeleteCanceled(t *testing.T) {
	store := sampleStore()
	m := loadedModel(t, store)

	m = step(t, m, keyRune('d'))
	m = step(t, m, keyRune('n'))

	assert.Equal(t, StateList, m.state)
	assert.Empty(t, store.deleted)
	assert.Len(t, m.entries, 2)
}

func TestModel_QuitAndResize(t *testing.T) {
	m := loadedModel(t, sampleStore())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40-chromeHeight, m.viewport.Height)

	updated, cmd := m.Update(keyRune('q'))
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestRun_RequiresStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, Run(ctx, nil))
}
