package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HistoryID identifies a saved history record. It is the creation time in
// unix milliseconds.
type HistoryID int64

// NewHistoryID returns the ID for a record created at t.
func NewHistoryID(t time.Time) HistoryID {
	return HistoryID(t.UnixMilli())
}

// ParseHistoryID parses an ID given on the command line.
func ParseHistoryID(s string) (HistoryID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid history ID %q: %w", s, err)
	}
	return HistoryID(id), nil
}

// String returns the decimal form of the ID.
func (id HistoryID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts both numeric and string-encoded IDs. Older payloads
// sometimes carried the ID as a string.
func (id *HistoryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseHistoryID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid history ID %s: %w", string(data), err)
	}
	if i, err := n.Int64(); err == nil {
		*id = HistoryID(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid history ID %s: %w", string(data), err)
	}
	*id = HistoryID(int64(f))
	return nil
}

// HistoryRecord is one saved analysis session.
type HistoryRecord struct {
	Timestamp string           `json:"timestamp"`
	Results   []AnalysisResult `json:"results"`
	ID        HistoryID        `json:"id"`
}

// Time returns the parsed record timestamp. Unparseable timestamps yield the
// zero time so they sort last.
func (r HistoryRecord) Time() time.Time {
	t, _ := ParseTimestamp(r.Timestamp)
	return t
}

// DisplayEntry summarizes a history record for listing.
type DisplayEntry struct {
	Time          time.Time
	Timestamp     string
	ID            HistoryID
	ImageCount    int
	FoodCount     int
	TotalCalories float64
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601 variants produced by browsers and by
// the analysis service. Timestamps without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way browsers serialize dates.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
