// Package app holds the state of one interactive analysis session: the
// selected images, the latest results and access to saved history.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/platewise/internal/analyzer"
	"github.com/Veraticus/platewise/internal/history"
	"github.com/Veraticus/platewise/internal/images"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/service"
)

var (
	// ErrNoImagesSelected is returned by Analyze with an empty selection.
	ErrNoImagesSelected = errors.New("no images selected")
	// ErrNothingToSave is returned by SaveResults before any analysis.
	ErrNothingToSave = errors.New("no analysis results to save")
	// ErrImageIndex is returned by RemoveImage for an index outside the selection.
	ErrImageIndex = errors.New("image index out of range")
)

// BatchAnalyzer analyzes a batch of images.
type BatchAnalyzer interface {
	Analyze(ctx context.Context, imgs []model.ImageFile, progress service.ProgressReporter) ([]model.AnalysisResult, error)
}

// HealthChecker probes the analysis service.
type HealthChecker interface {
	Health(ctx context.Context) (*analyzer.HealthStatus, error)
}

// App is the application context. It is not safe for concurrent use.
type App struct {
	analyzer BatchAnalyzer
	health   HealthChecker
	history  *history.Store
	selected []model.ImageFile
	results  []model.AnalysisResult
}

// New creates an App.
func New(a BatchAnalyzer, h HealthChecker, store *history.Store) *App {
	return &App{analyzer: a, health: h, history: store}
}

// SelectFiles replaces the selection with the valid images among paths.
// Each rejected path is reported in rejected; valid files are kept.
func (a *App) SelectFiles(paths []string) (selected []model.ImageFile, rejected []error) {
	files, errs := images.LoadAll(paths)
	for _, err := range errs {
		slog.Warn("Skipping file", "error", err)
	}
	a.selected = files
	return a.Selected(), errs
}

// AddImages appends already loaded images to the selection.
func (a *App) AddImages(imgs ...model.ImageFile) {
	a.selected = append(a.selected, imgs...)
}

// Selected returns a copy of the current selection.
func (a *App) Selected() []model.ImageFile {
	out := make([]model.ImageFile, len(a.selected))
	copy(out, a.selected)
	return out
}

// RemoveImage drops the image at index from the selection.
func (a *App) RemoveImage(index int) error {
	if index < 0 || index >= len(a.selected) {
		return fmt.Errorf("%w: %d (have %d)", ErrImageIndex, index, len(a.selected))
	}
	a.selected = append(a.selected[:index], a.selected[index+1:]...)
	return nil
}

// ClearImages empties the selection.
func (a *App) ClearImages() {
	a.selected = nil
}

// Analyze runs the selection through the analysis service. On success the
// results become the current results; on failure they are left unchanged.
func (a *App) Analyze(ctx context.Context, progress service.ProgressReporter) ([]model.AnalysisResult, error) {
	if len(a.selected) == 0 {
		return nil, ErrNoImagesSelected
	}

	results, err := a.analyzer.Analyze(ctx, a.Selected(), progress)
	if err != nil {
		return nil, err
	}
	a.results = results
	return results, nil
}

// Results returns the current results, or nil before any analysis.
func (a *App) Results() []model.AnalysisResult {
	return a.results
}

// SaveResults stores the current results as a new history record.
func (a *App) SaveResults(ctx context.Context) (model.HistoryRecord, error) {
	if a.results == nil {
		return model.HistoryRecord{}, ErrNothingToSave
	}
	return a.history.Save(ctx, a.results)
}

// StartNewAnalysis clears the selection and the current results.
func (a *App) StartNewAnalysis() {
	a.ClearImages()
	a.results = nil
}

// History returns the most recent saved sessions, newest first.
func (a *App) History(ctx context.Context) ([]model.DisplayEntry, error) {
	return a.history.Render(ctx)
}

// DeleteHistory removes a saved session.
func (a *App) DeleteHistory(ctx context.Context, id model.HistoryID) (bool, error) {
	return a.history.Delete(ctx, id)
}

// HistoryStore exposes the underlying history store.
func (a *App) HistoryStore() *history.Store {
	return a.history
}

// CheckConnection probes the analysis service. Failures wrap
// analyzer.ErrServiceUnavailable and are meant as warnings.
func (a *App) CheckConnection(ctx context.Context) (*analyzer.HealthStatus, error) {
	status, err := a.health.Health(ctx)
	if err != nil {
		if !errors.Is(err, analyzer.ErrServiceUnavailable) {
			err = fmt.Errorf("%w: %w", analyzer.ErrServiceUnavailable, err)
		}
		return nil, err
	}
	return status, nil
}
