// Package enrich turns raw analysis payloads into foods with nutrition
// attached and per-image totals.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/nutrition"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel nutrition lookups for one payload.
const DefaultConcurrency = 4

// Pipeline enriches raw analysis payloads.
type Pipeline struct {
	source       nutrition.Source
	table        *nutrition.Table
	concurrency  int
	textFallback bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSource sets the nutrition source. The default is the built-in table.
func WithSource(src nutrition.Source) Option {
	return func(p *Pipeline) {
		if src != nil {
			p.source = src
		}
	}
}

// WithTextFallback enables parsing "Food:"/"Weight:" lines when the payload
// is not JSON.
func WithTextFallback(enabled bool) Option {
	return func(p *Pipeline) {
		p.textFallback = enabled
	}
}

// WithConcurrency bounds the number of lookups in flight.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts ...Option) *Pipeline {
	table := nutrition.NewTable()
	p := &Pipeline{
		source:      table,
		table:       table,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Source returns the configured nutrition source.
func (p *Pipeline) Source() nutrition.Source {
	return p.source
}

// Enrich decodes raw and attaches nutrition to every food. It never fails:
// a malformed payload yields zero foods, and a failing source degrades to
// the built-in table. TotalNutrition is always set.
func (p *Pipeline) Enrich(ctx context.Context, raw string) model.EnrichedResult {
	foods := p.detect(raw)

	result, err := p.enrichFoods(ctx, foods)
	if err == nil {
		return result
	}

	slog.Warn("Nutrition enrichment failed, using estimated values",
		"source", p.source.Name(),
		"foods", len(foods),
		"error", err)
	return p.degraded(raw)
}

// EnrichFoods attaches nutrition to already decoded foods, as the lookup
// command does for foods given on the command line.
func (p *Pipeline) EnrichFoods(ctx context.Context, foods []model.DetectedFood) (model.EnrichedResult, error) {
	return p.enrichFoods(ctx, foods)
}

func (p *Pipeline) detect(raw string) []model.DetectedFood {
	foods, err := DecodeFoods(raw)
	if err == nil {
		return foods
	}
	if p.textFallback && errors.Is(err, ErrNotJSON) {
		parsed := ParseTextFoods(StripCodeFence(raw))
		slog.Debug("Parsed text payload", "foods", len(parsed))
		return parsed
	}
	if raw != "" {
		slog.Debug("Payload has no decodable foods", "error", err)
	}
	return nil
}

func (p *Pipeline) enrichFoods(ctx context.Context, foods []model.DetectedFood) (result model.EnrichedResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enrichment panicked: %v", r)
		}
	}()

	enriched := make([]model.EnrichedFood, len(foods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, f := range foods {
		i, f := i, f
		g.Go(func() (goErr error) {
			defer func() {
				if r := recover(); r != nil {
					goErr = fmt.Errorf("lookup for %q panicked: %v", f.EnglishName, r)
				}
			}()

			rec, lookupErr := p.source.Lookup(gctx, f.EnglishName, f.EstimatedWeightGrams)
			if lookupErr != nil {
				return fmt.Errorf("failed to look up %q: %w", f.EnglishName, lookupErr)
			}
			enriched[i] = model.EnrichedFood{DetectedFood: f, Nutrition: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.EnrichedResult{}, err
	}

	total := nutrition.Aggregate(enriched)
	return model.EnrichedResult{Foods: enriched, TotalNutrition: &total}, nil
}

// degraded re-estimates every food with the built-in table.
func (p *Pipeline) degraded(raw string) (result model.EnrichedResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Estimated enrichment failed", "panic", r)
			result = model.EmptyEnrichedResult()
		}
	}()

	foods := p.detect(raw)
	enriched := make([]model.EnrichedFood, len(foods))
	for i, f := range foods {
		enriched[i] = model.EnrichedFood{
			DetectedFood: f,
			Nutrition:    p.table.Estimate(f.EnglishName, f.EstimatedWeightGrams),
		}
	}
	total := nutrition.Aggregate(enriched)
	return model.EnrichedResult{Foods: enriched, TotalNutrition: &total}
}
