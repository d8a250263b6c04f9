package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/platewise/internal/analyzer"
	"github.com/Veraticus/platewise/internal/app"
	"github.com/Veraticus/platewise/internal/config"
	"github.com/Veraticus/platewise/internal/enrich"
	"github.com/Veraticus/platewise/internal/history"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/nutrition"
	"github.com/Veraticus/platewise/internal/orchestrator"
	"github.com/Veraticus/platewise/internal/storage"
)

func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return settings, nil
}

// initStorage opens and migrates the history database.
func initStorage(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildSource returns the configured nutrition source. The built-in table
// is used when nutrition.source is "estimated".
func buildSource(settings config.Settings) (nutrition.Source, error) {
	if settings.Nutrition.Source != model.SourceUSDA {
		return nutrition.NewTable(), nil
	}

	usda, err := nutrition.NewUSDASource(nutrition.USDAConfig{
		APIKey:            settings.Nutrition.USDA.APIKey,
		BaseURL:           settings.Nutrition.USDA.BaseURL,
		RequestsPerMinute: settings.Nutrition.USDA.RequestsPerMinute,
		CacheTTL:          settings.Nutrition.USDA.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create USDA source: %w", err)
	}
	return nutrition.NewFallbackSource(usda), nil
}

func buildPipeline(settings config.Settings) (*enrich.Pipeline, error) {
	source, err := buildSource(settings)
	if err != nil {
		return nil, err
	}
	slog.Debug("Nutrition source configured", "source", source.Name())

	return enrich.NewPipeline(
		enrich.WithSource(source),
		enrich.WithTextFallback(settings.Analysis.TextFallback),
	), nil
}

// session bundles everything a command needs to talk to the service and
// the history database.
type session struct {
	app    *app.App
	client *analyzer.Client
	store  *storage.SQLiteStorage
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func newSession(ctx context.Context) (*session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	pipeline, err := buildPipeline(settings)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, err
	}

	client := analyzer.NewClient(settings.Service.BaseURL, settings.Service.Timeout)
	return &session{
		app:    app.New(orchestrator.New(client, pipeline), client, history.NewStore(store)),
		client: client,
		store:  store,
	}, nil
}

func writeln(w io.Writer, a ...any) {
	if _, err := fmt.Fprintln(w, a...); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
