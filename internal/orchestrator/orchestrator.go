// Package orchestrator runs a batch of images through the analysis service
// and the enrichment pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/platewise/internal/analyzer"
	"github.com/Veraticus/platewise/internal/enrich"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/service"
)

// Analyzer uploads one image to the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, img model.ImageFile) (*analyzer.Response, error)
}

// Enricher attaches nutrition to a raw payload.
type Enricher interface {
	Enrich(ctx context.Context, raw string) model.EnrichedResult
}

// Orchestrator analyzes images one at a time.
type Orchestrator struct {
	analyzer Analyzer
	enricher Enricher
	now      func() time.Time
}

// New creates an Orchestrator.
func New(a Analyzer, e Enricher) *Orchestrator {
	return &Orchestrator{analyzer: a, enricher: e, now: time.Now}
}

var _ Enricher = (*enrich.Pipeline)(nil)

// Analyze uploads every image in order, with at most one request in flight.
// Any failed request aborts the batch and no partial results are returned.
func (o *Orchestrator) Analyze(ctx context.Context, images []model.ImageFile, progress service.ProgressReporter) ([]model.AnalysisResult, error) {
	if progress == nil {
		progress = service.NoProgress
	}

	n := float64(len(images))
	results := make([]model.AnalysisResult, 0, len(images))

	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		progress.Update(float64(i)/n*100, fmt.Sprintf("Analyzing image %d of %d...", i+1, len(images)))
		slog.Info("Analyzing image", "index", i+1, "total", len(images), "name", img.Name, "size", img.Size)

		resp, err := o.analyzer.Analyze(ctx, img)
		if err != nil {
			slog.Error("Analysis failed", "name", img.Name, "error", err)
			return nil, fmt.Errorf("failed to analyze %s: %w", img.Name, err)
		}

		progress.Update((float64(i)+0.1)/n*100, "Processing results...")
		results = append(results, o.buildResult(ctx, img, resp))
	}

	progress.Update(100, "Analysis complete!")
	return results, nil
}

func (o *Orchestrator) buildResult(ctx context.Context, img model.ImageFile, resp *analyzer.Response) model.AnalysisResult {
	enriched, ok := resp.Parsed()
	if ok {
		slog.Debug("Using service nutrition", "name", img.Name, "foods", len(enriched.Foods))
	} else {
		result := o.enricher.Enrich(ctx, resp.PipelineInput())
		enriched = &result
		slog.Debug("Enriched locally", "name", img.Name, "foods", len(enriched.Foods))
	}

	timestamp := resp.AnalysisTimestamp
	if timestamp == "" {
		timestamp = model.FormatTimestamp(o.now())
	}

	return model.AnalysisResult{
		Image:          img,
		RawResult:      resp.RawText(),
		EnrichedResult: enriched,
		Timestamp:      timestamp,
	}
}
