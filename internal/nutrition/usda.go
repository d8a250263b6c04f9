package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/platewise/internal/common"
	"github.com/Veraticus/platewise/internal/model"
	"github.com/Veraticus/platewise/internal/service"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// FoodData Central nutrient identifiers. Search results carry the numeric
// nutrientId; older payloads only carry the legacy nutrientNumber.
const (
	nutrientEnergy        = 1008
	nutrientEnergyAtwater = 2047
	nutrientEnergyGeneral = 2048
	nutrientProtein       = 1003
	nutrientFat           = 1004
	nutrientCarbs         = 1005
	nutrientFiber         = 1079
	nutrientSugar         = 2000
	nutrientSugarLegacy   = 1063
	searchDataTypes       = "Foundation,SR Legacy"
	defaultUSDATimeout    = 15 * time.Second
	defaultRequestsPerMin = 30
	defaultLookupCacheTTL = 24 * time.Hour
	maxErrorBodyBytes     = 512
)

var legacyNutrientNumbers = map[string]int{
	"208": nutrientEnergy,
	"203": nutrientProtein,
	"204": nutrientFat,
	"205": nutrientCarbs,
	"291": nutrientFiber,
	"269": nutrientSugar,
}

// USDAConfig configures a USDASource.
type USDAConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerMinute int
	CacheTTL          time.Duration
	Timeout           time.Duration
	Retry             service.RetryOptions
}

// FoodMatch is the best FoodData Central match for a query.
type FoodMatch struct {
	Description string
	Values      Per100g
	FDCID       int
}

// USDASource looks up nutrition in USDA FoodData Central. Results are
// cached per query and requests are rate limited.
type USDASource struct {
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
	cfg        USDAConfig
}

var _ Source = (*USDASource)(nil)

// NewUSDASource creates a FoodData Central client.
func NewUSDASource(cfg USDAConfig) (*USDASource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: USDA API key", common.ErrMissingConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.nal.usda.gov/fdc/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMin
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultLookupCacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultUSDATimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2,
		}
	}

	perRequest := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return &USDASource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		limiter:    rate.NewLimiter(rate.Every(perRequest), 1),
	}, nil
}

// Name implements Source.
func (s *USDASource) Name() string {
	return string(model.SourceUSDA)
}

// Lookup implements Source. A query with no usable result returns
// common.ErrNoNutritionMatch.
func (s *USDASource) Lookup(ctx context.Context, foodName string, weightGrams float64) (model.NutritionRecord, error) {
	match, err := s.Search(ctx, foodName)
	if err != nil {
		return model.NutritionRecord{}, err
	}
	return Scale(match.Values, weightGrams, model.SourceUSDA), nil
}

type cachedMiss struct{}

// Search returns the best match for query.
func (s *USDASource) Search(ctx context.Context, query string) (FoodMatch, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return FoodMatch{}, fmt.Errorf("%w: empty food name", common.ErrNoNutritionMatch)
	}

	if cached, found := s.cache.Get(key); found {
		switch v := cached.(type) {
		case FoodMatch:
			slog.Debug("USDA lookup cache hit", "query", key, "fdc_id", v.FDCID)
			return v, nil
		case cachedMiss:
			return FoodMatch{}, fmt.Errorf("%w: %q", common.ErrNoNutritionMatch, query)
		}
	}

	var match FoodMatch
	var found bool
	err := common.WithRetry(ctx, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return common.Permanent(err)
		}
		var searchErr error
		match, found, searchErr = s.search(ctx, key)
		return searchErr
	}, s.cfg.Retry)
	if err != nil {
		return FoodMatch{}, fmt.Errorf("%w: %w", common.ErrLookupFailed, err)
	}

	if !found {
		s.cache.Set(key, cachedMiss{}, cache.DefaultExpiration)
		return FoodMatch{}, fmt.Errorf("%w: %q", common.ErrNoNutritionMatch, query)
	}

	s.cache.Set(key, match, cache.DefaultExpiration)
	slog.Debug("USDA lookup cached", "query", key, "fdc_id", match.FDCID, "description", match.Description)
	return match, nil
}

type searchResponse struct {
	Foods []searchFood `json:"foods"`
}

type searchFood struct {
	Description   string           `json:"description"`
	FoodNutrients []searchNutrient `json:"foodNutrients"`
	FDCID         int              `json:"fdcId"`
}

type searchNutrient struct {
	NutrientNumber string  `json:"nutrientNumber"`
	Value          float64 `json:"value"`
	NutrientID     int     `json:"nutrientId"`
}

func (s *USDASource) search(ctx context.Context, query string) (FoodMatch, bool, error) {
	params := url.Values{}
	params.Set("api_key", s.cfg.APIKey)
	params.Set("query", query)
	params.Set("pageSize", "1")
	params.Set("dataType", searchDataTypes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return FoodMatch{}, false, common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return FoodMatch{}, false, common.Permanent(ctx.Err())
		}
		return FoodMatch{}, false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FoodMatch{}, false, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return FoodMatch{}, false, common.RateLimited(parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	case resp.StatusCode >= http.StatusInternalServerError:
		return FoodMatch{}, false, fmt.Errorf("USDA API error (status %d): %s", resp.StatusCode, truncate(body))
	case resp.StatusCode != http.StatusOK:
		return FoodMatch{}, false, common.Permanent(
			fmt.Errorf("USDA API error (status %d): %s", resp.StatusCode, truncate(body)))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return FoodMatch{}, false, common.Permanent(fmt.Errorf("failed to parse response: %w", err))
	}
	if len(result.Foods) == 0 {
		return FoodMatch{}, false, nil
	}

	food := result.Foods[0]
	return FoodMatch{
		Description: food.Description,
		FDCID:       food.FDCID,
		Values:      extractPer100g(food.FoodNutrients),
	}, true, nil
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. Unparseable or past values yield 0.
func parseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if at, err := http.ParseTime(header); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}

// extractPer100g reads the six tracked nutrients. Foundation foods may
// report energy only under the Atwater identifiers.
func extractPer100g(nutrients []searchNutrient) Per100g {
	byID := make(map[int]float64, len(nutrients))
	for _, n := range nutrients {
		id := n.NutrientID
		if id == 0 {
			id = legacyNutrientNumbers[n.NutrientNumber]
		}
		if _, seen := byID[id]; !seen {
			byID[id] = n.Value
		}
	}

	energy, ok := byID[nutrientEnergy]
	if !ok {
		if energy, ok = byID[nutrientEnergyAtwater]; !ok {
			energy = byID[nutrientEnergyGeneral]
		}
	}
	sugar, ok := byID[nutrientSugar]
	if !ok {
		sugar = byID[nutrientSugarLegacy]
	}

	return Per100g{
		Calories: energy,
		Protein:  byID[nutrientProtein],
		Fat:      byID[nutrientFat],
		Carbs:    byID[nutrientCarbs],
		Fiber:    byID[nutrientFiber],
		Sugar:    sugar,
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes]) + "..."
	}
	return string(body)
}

// IsNoMatch reports whether err means the source had no data for a food.
func IsNoMatch(err error) bool {
	return errors.Is(err, common.ErrNoNutritionMatch)
}
