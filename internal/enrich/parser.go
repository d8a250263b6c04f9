package enrich

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/platewise/internal/model"
)

// Text payload defaults.
const (
	DefaultTextWeightGrams = 100
	DefaultTextConfidence  = 0.8
	DefaultTextMethod      = "unknown"
)

var (
	// ErrNotJSON indicates the payload is not a JSON document.
	ErrNotJSON = errors.New("payload is not JSON")
	// ErrNoFoods indicates a JSON payload without a foods array.
	ErrNoFoods = errors.New("payload has no foods field")
)

var (
	fencePattern  = regexp.MustCompile("(?s)^\\s*```[A-Za-z0-9_-]*\\s*\\n?(.*?)\\n?\\s*```\\s*$")
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	foodLabels    = []string{"Food:", "食物:"}
	weightLabels  = []string{"Weight:", "重量:"}
)

// StripCodeFence removes a surrounding Markdown code fence, which model
// output often carries. Other input is returned trimmed.
func StripCodeFence(raw string) string {
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// DecodeFoods reads the foods array from a JSON payload. Individual fields
// are read leniently: numbers may be encoded as strings and missing numbers
// are zero. Null items are skipped.
func DecodeFoods(payload string) ([]model.DetectedFood, error) {
	trimmed := StripCodeFence(payload)
	if trimmed == "" {
		return nil, ErrNotJSON
	}

	var doc struct {
		Foods json.RawMessage `json:"foods"`
	}
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJSON, err)
	}
	if len(doc.Foods) == 0 || bytes.Equal(doc.Foods, []byte("null")) {
		return nil, ErrNoFoods
	}

	var items []*model.DetectedFood
	if err := json.Unmarshal(doc.Foods, &items); err != nil {
		return nil, fmt.Errorf("failed to decode foods: %w", err)
	}

	foods := make([]model.DetectedFood, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		foods = append(foods, *item)
	}
	return foods, nil
}

// ParseTextFoods reads "Food:" and "Weight:" lines from free-form text.
// Each Food line starts a new item with default weight, confidence and
// method; a following Weight line with a positive number overrides the
// weight.
func ParseTextFoods(text string) []model.DetectedFood {
	var foods []model.DetectedFood
	var current *model.DetectedFood

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case containsAny(line, foodLabels):
			if current != nil {
				foods = append(foods, *current)
			}
			current = &model.DetectedFood{
				EnglishName:          afterLastColon(line),
				EstimatedWeightGrams: DefaultTextWeightGrams,
				Confidence:           DefaultTextConfidence,
				Method:               DefaultTextMethod,
			}
		case containsAny(line, weightLabels):
			if current == nil {
				continue
			}
			if w, err := strconv.ParseFloat(numberPattern.FindString(afterLastColon(line)), 64); err == nil && w > 0 {
				current.EstimatedWeightGrams = w
			}
		}
	}

	if current != nil {
		foods = append(foods, *current)
	}
	return foods
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func afterLastColon(line string) string {
	if i := strings.LastIndex(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(line)
}
