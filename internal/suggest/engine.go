package suggest

import (
	"context"
	"time"

	"github.com/flightschool/weatherops/internal/metrics"

	"go.uber.org/zap"
)

// Engine is the public suggestion surface. It always returns exactly
// three options: the AI path's failure is never user-visible because
// the fallback guarantees three options.
type Engine struct {
	ai     AIClient
	cache  *Cache
	logger *zap.Logger
}

func NewEngine(ai AIClient, cache *Cache, logger *zap.Logger) *Engine {
	return &Engine{ai: ai, cache: cache, logger: logger}
}

// Suggest returns three options sorted descending by weather_score
// (ties broken by earliest date_time), reading and populating the TTL
// cache along the way.
func (e *Engine) Suggest(ctx context.Context, input Input) [3]Option {
	digestKey := digest(input.BookingID, input.ScheduledStart)

	if e.cache != nil {
		if cached, ok := e.cache.Get(digestKey); ok {
			metrics.RecordAICacheHit()
			return cached
		}
		metrics.RecordAICacheMiss()
	}

	start := time.Now()
	options, outcome := e.compute(ctx, input)
	metrics.RecordAISuggestion(outcome, time.Since(start))

	if e.cache != nil {
		e.cache.Set(digestKey, options)
	}

	return options
}

func (e *Engine) compute(ctx context.Context, input Input) ([3]Option, string) {
	if e.ai != nil {
		prompt := buildPrompt(input)
		raw, err := e.ai.Complete(ctx, prompt)
		if err != nil {
			e.logger.Warn("AI suggestion path failed, using fallback", zap.Error(err))
		} else if options, ok := parseAIResponse(raw, time.Now()); ok {
			return options, "ai"
		} else {
			e.logger.Warn("AI suggestion response rejected, using fallback")
		}
	}

	return fallback(input), "fallback"
}
