// Package config resolves application settings from viper and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultServiceURL         = "http://localhost:8001"
	DefaultServiceTimeout     = 120 * time.Second
	DefaultDatabasePath       = "$HOME/.local/share/platewise/platewise.db"
	DefaultUSDABaseURL        = "https://api.nal.usda.gov/fdc/v1"
	DefaultUSDARequestsPerMin = 30
	DefaultUSDACacheTTL       = 24 * time.Hour
)

// Settings is the resolved application configuration.
type Settings struct {
	Service   ServiceSettings
	Nutrition NutritionSettings
	Database  DatabaseSettings
	Analysis  AnalysisSettings
}

// ServiceSettings locates the food analysis service.
type ServiceSettings struct {
	BaseURL string
	Timeout time.Duration
}

// DatabaseSettings locates local storage.
type DatabaseSettings struct {
	Path string
}

// NutritionSettings selects where nutrition data comes from.
type NutritionSettings struct {
	Source model.NutritionSource
	USDA   USDASettings
}

// USDASettings configures the FoodData Central lookup.
type USDASettings struct {
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// AnalysisSettings tunes how service responses are interpreted.
type AnalysisSettings struct {
	TextFallback bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service.base_url", DefaultServiceURL)
	v.SetDefault("service.timeout", DefaultServiceTimeout)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("nutrition.source", string(model.SourceEstimated))
	v.SetDefault("nutrition.usda.base_url", DefaultUSDABaseURL)
	v.SetDefault("nutrition.usda.requests_per_minute", DefaultUSDARequestsPerMin)
	v.SetDefault("nutrition.usda.cache_ttl", DefaultUSDACacheTTL)
	v.SetDefault("analysis.text_fallback", false)
}

// Load resolves Settings from v. It follows this precedence:
// 1. Viper configuration (config file, PLATEWISE_ env vars, flags)
// 2. Direct environment variables (USDA_API_KEY)
// 3. Default values
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		Service: ServiceSettings{
			BaseURL: strings.TrimRight(v.GetString("service.base_url"), "/"),
			Timeout: v.GetDuration("service.timeout"),
		},
		Database: DatabaseSettings{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Nutrition: NutritionSettings{
			Source: model.NutritionSource(strings.ToLower(strings.TrimSpace(v.GetString("nutrition.source")))),
			USDA: USDASettings{
				APIKey:            v.GetString("nutrition.usda.api_key"),
				BaseURL:           strings.TrimRight(v.GetString("nutrition.usda.base_url"), "/"),
				RequestsPerMinute: v.GetInt("nutrition.usda.requests_per_minute"),
				CacheTTL:          v.GetDuration("nutrition.usda.cache_ttl"),
			},
		},
		Analysis: AnalysisSettings{
			TextFallback: v.GetBool("analysis.text_fallback"),
		},
	}

	if s.Nutrition.USDA.APIKey == "" {
		s.Nutrition.USDA.APIKey = os.Getenv("USDA_API_KEY")
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if err := validateURL("service.base_url", s.Service.BaseURL); err != nil {
		return err
	}
	if s.Service.Timeout <= 0 {
		return fmt.Errorf("%w: service.timeout must be positive, got %s", common.ErrInvalidConfig, s.Service.Timeout)
	}
	if s.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	switch s.Nutrition.Source {
	case model.SourceEstimated:
	case model.SourceUSDA:
		if s.Nutrition.USDA.APIKey == "" {
			return fmt.Errorf("%w: nutrition.usda.api_key (or USDA_API_KEY) is required when nutrition.source is usda", common.ErrMissingConfig)
		}
		if err := validateURL("nutrition.usda.base_url", s.Nutrition.USDA.BaseURL); err != nil {
			return err
		}
		if s.Nutrition.USDA.RequestsPerMinute <= 0 {
			return fmt.Errorf("%w: nutrition.usda.requests_per_minute must be positive", common.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: nutrition.source must be %q or %q, got %q",
			common.ErrInvalidConfig, model.SourceEstimated, model.SourceUSDA, s.Nutrition.Source)
	}
	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", common.ErrInvalidConfig, key, raw)
	}
	return nil
}
