package nutrition

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/model"
)

// Source looks up nutrition for a food at a given weight.
type Source interface {
	Lookup(ctx context.Context, foodName string, weightGrams float64) (model.NutritionRecord, error)
	Name() string
}

var (
	_ Source = (*Table)(nil)
	_ Source = (*FallbackSource)(nil)
)

// FallbackSource asks Primary first and uses Fallback when Primary has no
// match or fails. Context cancellation is never masked.
type FallbackSource struct {
	Primary  Source
	Fallback Source
}

// NewFallbackSource chains primary with the built-in table.
func NewFallbackSource(primary Source) *FallbackSource {
	return &FallbackSource{Primary: primary, Fallback: NewTable()}
}

// Lookup implements Source.
func (f *FallbackSource) Lookup(ctx context.Context, foodName string, weightGrams float64) (model.NutritionRecord, error) {
	rec, err := f.Primary.Lookup(ctx, foodName, weightGrams)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, context.Canceled) {
		return model.NutritionRecord{}, err
	}

	if errors.Is(err, common.ErrNoNutritionMatch) {
		slog.Debug("No nutrition match, using fallback",
			"food", foodName, "primary", f.Primary.Name(), "fallback", f.Fallback.Name())
	} else {
		slog.Warn("Nutrition lookup failed, using fallback",
			"food", foodName, "primary", f.Primary.Name(), "error", err)
	}
	return f.Fallback.Lookup(ctx, foodName, weightGrams)
}

// Name implements Source.
func (f *FallbackSource) Name() string {
	return f.Primary.Name() + "+" + f.Fallback.Name()
}
