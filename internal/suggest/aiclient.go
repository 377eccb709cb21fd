package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// AIClient submits a prompt to an external text-completion service and
// parses its response. Only AIClient is mocked in tests; the rest of
// the suggestion engine is pure.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient is the default AIClient, talking to an OpenAI-compatible
// chat completions endpoint.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewOpenAIClient(apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.openai.com/v1/chat/completions",
		http:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You respond with strict JSON only, matching the requested schema."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode AI request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build AI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode AI response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("AI response contained no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

// aiOptionsPayload is the strict schema the AI path requires.
type aiOptionsPayload struct {
	Options []Option `json:"options"`
}

// parseAIResponse accepts only a payload with at least 3 well-typed
// options whose date_time is in the future; anything else is rejected
// so the caller can fall through to the deterministic path.
func parseAIResponse(raw string, now time.Time) ([3]Option, bool) {
	var payload aiOptionsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return [3]Option{}, false
	}
	if len(payload.Options) < 3 {
		return [3]Option{}, false
	}

	valid := make([]Option, 0, len(payload.Options))
	for _, opt := range payload.Options {
		if opt.DateTime.IsZero() || !opt.DateTime.After(now) {
			continue
		}
		if opt.WeatherScore < 0 || opt.WeatherScore > 10 {
			continue
		}
		if len(opt.Reason) == 0 || len(opt.Reason) > 280 {
			continue
		}
		valid = append(valid, opt)
	}
	if len(valid) < 3 {
		return [3]Option{}, false
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].WeatherScore > valid[j].WeatherScore
	})

	var result [3]Option
	copy(result[:], valid[:3])
	sortByScoreThenTime(&result)
	return result, true
}
