package config

import (
	"testing"
	"time"

	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("USDA_API_KEY", "")

	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultServiceURL, s.Service.BaseURL)
	assert.Equal(t, 120*time.Second, s.Service.Timeout)
	assert.Equal(t, "/home/tester/.local/share/platewise/platewise.db", s.Database.Path)
	assert.Equal(t, model.SourceEstimated, s.Nutrition.Source)
	assert.Equal(t, DefaultUSDABaseURL, s.Nutrition.USDA.BaseURL)
	assert.Equal(t, 30, s.Nutrition.USDA.RequestsPerMinute)
	assert.Equal(t, 24*time.Hour, s.Nutrition.USDA.CacheTTL)
	assert.False(t, s.Analysis.TextFallback)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("service.base_url", "https://food.example.com/")
	v.Set("service.timeout", "30s")
	v.Set("database.path", "/tmp/pw.db")
	v.Set("nutrition.source", "USDA")
	v.Set("nutrition.usda.api_key", "from-config")
	v.Set("analysis.text_fallback", true)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://food.example.com", s.Service.BaseURL)
	assert.Equal(t, 30*time.Second, s.Service.Timeout)
	assert.Equal(t, "/tmp/pw.db", s.Database.Path)
	assert.Equal(t, model.SourceUSDA, s.Nutrition.Source)
	assert.Equal(t, "from-config", s.Nutrition.USDA.APIKey)
	assert.True(t, s.Analysis.TextFallback)
}

func TestLoad_USDAKeyFromEnvironment(t *testing.T) {
	t.Setenv("USDA_API_KEY", "from-env")

	v := viper.New()
	v.Set("nutrition.source", "usda")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Nutrition.USDA.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		set     map[string]any
		wantErr error
		name    string
	}{
		{
			name:    "bad service url",
			set:     map[string]any{"service.base_url": "localhost:8001"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "empty service url",
			set:     map[string]any{"service.base_url": ""},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "zero timeout",
			set:     map[string]any{"service.timeout": "0s"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "unknown source",
			set:     map[string]any{"nutrition.source": "openfoodfacts"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "usda without key",
			set:     map[string]any{"nutrition.source": "usda"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name: "usda without rate",
			set: map[string]any{
				"nutrition.source":                   "usda",
				"nutrition.usda.api_key":             "k",
				"nutrition.usda.requests_per_minute": 0,
			},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("USDA_API_KEY", "")
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
