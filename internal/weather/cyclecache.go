package weather

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/flightschool/weatherops/internal/metrics"
)

// CycleCache memoizes fetches for the duration of a single scheduler
// tick, keyed by (lat, lon) rounded to 4 decimals so nearby bookings at
// the same field share one HTTP call. It is not a TTL cache — callers
// create a fresh one per tick and discard it afterward.
type CycleCache struct {
	mu     sync.Mutex
	client *Client
	hits   map[string]cycleCacheEntry
}

type cycleCacheEntry struct {
	obs Observation
	err error
}

func NewCycleCache(client *Client) *CycleCache {
	return &CycleCache{client: client, hits: make(map[string]cycleCacheEntry)}
}

func roundKey(loc Location) string {
	return fmt.Sprintf("%.4f,%.4f", math.Round(loc.Lat*10000)/10000, math.Round(loc.Lon*10000)/10000)
}

// Fetch returns the memoized observation for loc's rounded coordinates,
// fetching through the underlying Client only on the first call for that
// key in this cycle.
func (c *CycleCache) Fetch(ctx context.Context, loc Location) (Observation, error) {
	key := roundKey(loc)

	c.mu.Lock()
	if entry, ok := c.hits[key]; ok {
		c.mu.Unlock()
		metrics.RecordWeatherCycleCacheHit()
		return entry.obs, entry.err
	}
	c.mu.Unlock()

	metrics.RecordWeatherCycleCacheMiss()
	obs, err := c.client.Fetch(ctx, loc)

	c.mu.Lock()
	c.hits[key] = cycleCacheEntry{obs: obs, err: err}
	c.mu.Unlock()

	return obs, err
}
