package weather

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/flightschool/weatherops/internal/apperrors"

	"github.com/PuerkitoBio/goquery"
)

// HTMLSource is the secondary weather source: it scrapes a decoded-METAR
// HTML page when the primary REST API is unavailable. It is only wired
// in when a fallback URL is configured.
type HTMLSource struct {
	baseURL string
	client  *http.Client
}

func NewHTMLSource(baseURL string, client *http.Client) *HTMLSource {
	return &HTMLSource{baseURL: baseURL, client: client}
}

func (s *HTMLSource) Name() string { return "html_metar" }

var numericFieldRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

func parseNumericValue(text string) (float64, bool) {
	match := numericFieldRe.FindString(text)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Fetch retrieves and parses the decoded-METAR HTML page for loc. The
// page is expected to carry one row per field with a class identifying
// its kind; layout mirrors a typical public decoded-METAR table.
func (s *HTMLSource) Fetch(ctx context.Context, loc Location) (Observation, error) {
	url := fmt.Sprintf("%s?lat=%f&lon=%f", s.baseURL, loc.Lat, loc.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Observation{}, apperrors.Internal(err)
	}
	req.Header.Set("User-Agent", "weatherops-scheduler/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return Observation{}, apperrors.ExternalUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Observation{}, apperrors.ExternalUnavailable(fmt.Errorf("fallback source returned %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return Observation{}, apperrors.ExternalRejected(fmt.Errorf("fallback source returned %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Observation{}, apperrors.Malformed(err)
	}

	return parseDecodedMETAR(doc)
}

func parseDecodedMETAR(doc *goquery.Document) (Observation, error) {
	var obs Observation
	found := false

	visibilitySelectors := []string{".visibility .value", ".metar-visibility", "[data-field=visibility]"}
	for _, sel := range visibilitySelectors {
		if text := doc.Find(sel).First().Text(); text != "" {
			if v, ok := parseNumericValue(text); ok {
				obs.VisibilityStatuteMiles = v
				found = true
				break
			}
		}
	}

	windSelectors := []string{".wind .value", ".metar-wind", "[data-field=wind_speed]"}
	for _, sel := range windSelectors {
		if text := doc.Find(sel).First().Text(); text != "" {
			if v, ok := parseNumericValue(text); ok {
				obs.WindSpeedKnots = v
				found = true
				break
			}
		}
	}

	if text := doc.Find(".ceiling .value, .metar-ceiling").First().Text(); text != "" {
		if v, ok := parseNumericValue(text); ok {
			obs.CeilingFeet = &v
		}
	}

	conditions := strings.TrimSpace(doc.Find(".conditions .value, .metar-remarks").First().Text())
	obs.Conditions = conditions
	lowered := strings.ToLower(conditions)
	obs.Thunderstorms = strings.Contains(lowered, "ts") || strings.Contains(lowered, "thunderstorm")
	obs.Icing = strings.Contains(lowered, "fzra") || strings.Contains(lowered, "icing")

	if !found {
		return Observation{}, apperrors.Malformed(fmt.Errorf("could not locate visibility or wind fields in fallback page"))
	}

	return obs, nil
}
