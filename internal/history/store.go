// Package history persists saved analysis sessions in a key-value store.
//
// The whole history is stored as one JSON array under StorageKey, the same
// layout browsers use for local storage, so records written by older
// clients load unchanged.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/nutrition"
	"github.com/Veraticus/platewise/internal/service"
)

const (
	// StorageKey is the key holding the serialized history.
	StorageKey = "foodAnalysisHistory"
	// DisplayLimit caps how many records Render returns.
	DisplayLimit = 10
)

// Store reads and writes the saved history.
type Store struct {
	kv    service.KeyValueStore
	table *nutrition.Table
	now   func() time.Time
}

// NewStore creates a Store backed by kv.
func NewStore(kv service.KeyValueStore) *Store {
	return &Store{kv: kv, table: nutrition.NewTable(), now: time.Now}
}

// Load returns every saved record in storage order. A missing key is an
// empty history.
func (s *Store) Load(ctx context.Context) ([]model.HistoryRecord, error) {
	raw, found, err := s.kv.GetItem(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return decodeRecords(raw, found)
}

// decodeRecords parses the stored array. Null entries are dropped.
func decodeRecords(raw string, found bool) ([]model.HistoryRecord, error) {
	if !found || strings.TrimSpace(raw) == "" {
		return []model.HistoryRecord{}, nil
	}

	var stored []*model.HistoryRecord
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrHistoryCorrupted, err)
	}

	records := make([]model.HistoryRecord, 0, len(stored))
	for _, r := range stored {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, nil
}

// update rewrites the history in a single storage transaction. fn returns
// the new records and whether anything changed.
func (s *Store) update(ctx context.Context, fn func([]model.HistoryRecord) ([]model.HistoryRecord, bool)) error {
	err := s.kv.UpdateItem(ctx, StorageKey, func(raw string, found bool) (string, bool, error) {
		records, err := decodeRecords(raw, found)
		if err != nil {
			return "", false, err
		}
		updated, changed := fn(records)
		if !changed {
			return "", false, nil
		}
		data, err := json.Marshal(updated)
		if err != nil {
			return "", false, fmt.Errorf("failed to encode history: %w", err)
		}
		return string(data), true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Save appends a new record holding results and returns it.
func (s *Store) Save(ctx context.Context, results []model.AnalysisResult) (model.HistoryRecord, error) {
	var record model.HistoryRecord
	err := s.update(ctx, func(records []model.HistoryRecord) ([]model.HistoryRecord, bool) {
		now := s.now()
		id := model.NewHistoryID(now)
		for hasID(records, id) {
			id++
		}
		record = model.HistoryRecord{
			ID:        id,
			Timestamp: model.FormatTimestamp(now),
			Results:   results,
		}
		return append(records, record), true
	})
	if err != nil {
		return model.HistoryRecord{}, err
	}
	slog.Info("Saved analysis to history", "id", record.ID, "images", len(record.Results))
	return record, nil
}

// Get returns the record with id.
func (s *Store) Get(ctx context.Context, id model.HistoryID) (model.HistoryRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return model.HistoryRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.HistoryRecord{}, fmt.Errorf("%w: history record %s", common.ErrNotFound, id)
}

// Delete removes every record whose ID equals id and reports whether any
// record was removed.
func (s *Store) Delete(ctx context.Context, id model.HistoryID) (bool, error) {
	removed := 0
	err := s.update(ctx, func(records []model.HistoryRecord) ([]model.HistoryRecord, bool) {
		kept := make([]model.HistoryRecord, 0, len(records))
		for _, r := range records {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		removed = len(records) - len(kept)
		return kept, removed > 0
	})
	if err != nil {
		return false, err
	}
	if removed > 0 {
		slog.Info("Deleted history record", "id", id, "removed", removed)
	}
	return removed > 0, nil
}

// Reset removes the stored history entirely, including corrupt payloads.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	return nil
}

// Render loads the history and returns the newest DisplayLimit entries.
func (s *Store) Render(ctx context.Context) ([]model.DisplayEntry, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(records, s.table, DisplayLimit), nil
}

func hasID(records []model.HistoryRecord, id model.HistoryID) bool {
	for _, r := range records {
		if r.ID == id {
			return true
		}
	}
	return false
}
