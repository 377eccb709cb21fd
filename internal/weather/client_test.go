package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	source := NewRESTSource(srv.URL, "test-key", time.Second)
	return NewClient(source, nil, 3, zap.NewNop())
}

func TestClient_Fetch_CanonicalizesUnits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"visibility_m":   16093.4, // ~10 statute miles
			"wind_speed_mps": 5.14444, // ~10 knots
			"clouds": []map[string]any{
				{"type": "BKN", "base_ft": 3000},
				{"type": "FEW", "base_ft": 1500},
			},
			"conditions": "clear",
		})
	})

	obs, err := client.Fetch(context.Background(), Location{Lat: 37.0, Lon: -122.0, Name: "KPAO"})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, obs.VisibilityStatuteMiles, 0.1)
	assert.InDelta(t, 10.0, obs.WindSpeedKnots, 0.1)
	require.NotNil(t, obs.CeilingFeet)
	assert.Equal(t, 3000.0, *obs.CeilingFeet)
}

func TestClient_Fetch_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"visibility_m": 1000.0, "wind_speed_mps": 1.0})
	})

	_, err := client.Fetch(context.Background(), Location{Lat: 1, Lon: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Fetch_DoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Fetch(context.Background(), Location{Lat: 1, Lon: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Fetch_MalformedBodyIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Fetch(context.Background(), Location{Lat: 1, Lon: 1})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCycleCache_MemoizesWithinOneTick(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"visibility_m": 1000.0, "wind_speed_mps": 1.0})
	})

	cache := NewCycleCache(client)
	loc1 := Location{Lat: 37.00001, Lon: -122.00001}
	loc2 := Location{Lat: 37.00002, Lon: -122.00002} // rounds to the same 4-decimal key

	_, err := cache.Fetch(context.Background(), loc1)
	require.NoError(t, err)
	_, err = cache.Fetch(context.Background(), loc2)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
