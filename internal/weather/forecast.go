package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ForecastDay is a deliberately minimal mirror of suggest.ForecastDay so
// this package has no dependency on the suggest package; callers adapt
// between the two.
type ForecastDay struct {
	Date        time.Time
	Observation Observation
}

// ForecastClient fetches a best-effort multi-day forecast summary. A
// failure here never propagates to the caller as an error — the
// reschedule read path treats an empty forecast as "no data available"
// and lets the suggestion engine's fallback carry on.
type ForecastClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func NewForecastClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *ForecastClient {
	return &ForecastClient{baseURL: baseURL, apiKey: apiKey, http: &http.Client{Timeout: timeout}, logger: logger}
}

type forecastResponse struct {
	Days []struct {
		Date             string   `json:"date"`
		VisibilityMeters float64  `json:"visibility_m"`
		WindSpeedMPS     float64  `json:"wind_speed_mps"`
		Thunderstorms    bool     `json:"thunderstorms"`
		Icing            bool     `json:"icing"`
		Clouds           []struct {
			Type   string  `json:"type"`
			BaseFt float64 `json:"base_ft"`
		} `json:"clouds"`
	} `json:"days"`
}

// ForecastDays returns up to `days` entries. Any failure — transport,
// non-2xx, or decode — is logged and an empty slice is returned.
func (c *ForecastClient) ForecastDays(ctx context.Context, loc Location, days int) []ForecastDay {
	if c.baseURL == "" {
		return nil
	}

	url := fmt.Sprintf("%s?lat=%f&lon=%f&days=%d&appid=%s", c.baseURL, loc.Lat, loc.Lon, days, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("failed to build forecast request", zap.Error(err))
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("forecast fetch failed, proceeding without forecast data", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.logger.Warn("forecast service returned non-2xx, proceeding without forecast data", zap.Int("status", resp.StatusCode))
		return nil
	}

	var raw forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Warn("failed to decode forecast response, proceeding without forecast data", zap.Error(err))
		return nil
	}

	result := make([]ForecastDay, 0, len(raw.Days))
	for _, d := range raw.Days {
		if len(result) >= days {
			break
		}
		date, err := time.Parse(time.RFC3339, d.Date)
		if err != nil {
			continue
		}

		var ceiling *float64
		for _, cloud := range d.Clouds {
			if cloud.Type != "BKN" && cloud.Type != "OVC" {
				continue
			}
			base := cloud.BaseFt
			if ceiling == nil || base < *ceiling {
				ceiling = &base
			}
		}

		result = append(result, ForecastDay{
			Date: date,
			Observation: Observation{
				VisibilityStatuteMiles: d.VisibilityMeters * 0.000621371,
				WindSpeedKnots:         d.WindSpeedMPS * 1.94384,
				CeilingFeet:            ceiling,
				Thunderstorms:          d.Thunderstorms,
				Icing:                  d.Icing,
			},
		})
	}

	return result
}
