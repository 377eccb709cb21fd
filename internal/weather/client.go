package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/flightschool/weatherops/internal/apperrors"
	"github.com/flightschool/weatherops/internal/metrics"

	"go.uber.org/zap"
)

// Source fetches one raw observation for a location. A Client may chain
// several sources (primary REST API, secondary HTML scrape) behind this
// interface.
type Source interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Observation, error)
}

// Client is the public weather lookup surface: retry and the
// primary-to-secondary fallback live here, on top of whatever Source is
// configured. Per-tick memoization is done by CycleCache.
type Client struct {
	primary   Source
	secondary Source
	retries   int
	logger    *zap.Logger
}

// NewClient wires a primary source and an optional secondary fallback
// source (nil disables the fallback).
func NewClient(primary, secondary Source, retries int, logger *zap.Logger) *Client {
	return &Client{primary: primary, secondary: secondary, retries: retries, logger: logger}
}

// Fetch retrieves an observation, retrying the primary source on
// transient failures per the backoff schedule in retry.go, then falling
// back to the secondary source (if configured) before giving up.
func (c *Client) Fetch(ctx context.Context, loc Location) (Observation, error) {
	obs, err := fetchWithRetry(ctx, c.primary, loc, c.retries, c.logger)
	if err == nil {
		return obs, nil
	}

	if c.secondary == nil {
		return Observation{}, err
	}

	c.logger.Warn("primary weather source failed, trying secondary",
		zap.String("location", loc.Name), zap.Error(err))

	obs, secErr := fetchWithRetry(ctx, c.secondary, loc, c.retries, c.logger)
	if secErr != nil {
		return Observation{}, err
	}
	return obs, nil
}

// RESTSource is the primary JSON weather API source.
type RESTSource struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewRESTSource(baseURL, apiKey string, timeout time.Duration) *RESTSource {
	return &RESTSource{BaseURL: baseURL, APIKey: apiKey, HTTP: &http.Client{Timeout: timeout}}
}

func (s *RESTSource) Name() string { return "rest" }

type restResponse struct {
	VisibilityMeters float64  `json:"visibility_m"`
	WindSpeedMPS     float64  `json:"wind_speed_mps"`
	GustSpeedMPS     *float64 `json:"gust_speed_mps"`
	Clouds           []struct {
		Type    string  `json:"type"`
		BaseFt  float64 `json:"base_ft"`
	} `json:"clouds"`
	Conditions    string `json:"conditions"`
	Thunderstorms bool   `json:"thunderstorms"`
	Icing         bool   `json:"icing"`
}

func (s *RESTSource) Fetch(ctx context.Context, loc Location) (Observation, error) {
	start := time.Now()
	url := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s", s.BaseURL, loc.Lat, loc.Lon, s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Observation{}, apperrors.Internal(err)
	}

	resp, err := s.HTTP.Do(req)
	if err != nil {
		metrics.RecordWeatherFetchError("rest", "transport")
		return Observation{}, apperrors.ExternalUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		metrics.RecordWeatherFetchError("rest", "server_error")
		return Observation{}, apperrors.ExternalUnavailable(fmt.Errorf("weather API returned %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		metrics.RecordWeatherFetchError("rest", "client_error")
		return Observation{}, apperrors.ExternalRejected(fmt.Errorf("weather API returned %d", resp.StatusCode))
	}

	var raw restResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		metrics.RecordWeatherFetchError("rest", "decode")
		return Observation{}, apperrors.Malformed(err)
	}

	obs := canonicalize(raw)
	metrics.RecordWeatherFetch("rest", "ok", time.Since(start))
	return obs, nil
}

func canonicalize(raw restResponse) Observation {
	obs := Observation{
		VisibilityStatuteMiles: raw.VisibilityMeters * 0.000621371,
		WindSpeedKnots:         raw.WindSpeedMPS * 1.94384,
		Conditions:             raw.Conditions,
		Thunderstorms:          raw.Thunderstorms,
		Icing:                  raw.Icing,
	}

	if raw.GustSpeedMPS != nil {
		gust := *raw.GustSpeedMPS * 1.94384
		obs.GustSpeedKnots = &gust
	}

	var lowestCeiling *float64
	for _, cloud := range raw.Clouds {
		if cloud.Type != "BKN" && cloud.Type != "OVC" {
			continue
		}
		base := cloud.BaseFt
		if lowestCeiling == nil || base < *lowestCeiling {
			lowestCeiling = &base
		}
	}
	obs.CeilingFeet = lowestCeiling

	return obs
}
