// Package metrics is the single place prometheus counters, histograms
// and gauges are registered. Call InitMetrics once at process startup.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var once sync.Once

var (
	weatherFetchTotal    *prometheus.CounterVec
	weatherFetchDuration *prometheus.HistogramVec
	weatherFetchErrors   *prometheus.CounterVec

	weatherCycleCacheHits   prometheus.Counter
	weatherCycleCacheMisses prometheus.Counter

	aiSuggestionsTotal    *prometheus.CounterVec
	aiSuggestionDuration  prometheus.Histogram
	aiCacheHitsTotal      prometheus.Counter
	aiCacheMissesTotal    prometheus.Counter

	alertsCreatedTotal   *prometheus.CounterVec
	alertsDismissedTotal prometheus.Counter

	notifyDeliveredTotal *prometheus.CounterVec
	notifyDuration       prometheus.Histogram
	notifyBatchSize      prometheus.Histogram

	schedulerTicksTotal         prometheus.Counter
	schedulerBookingsProcessed  *prometheus.CounterVec
	schedulerTickDuration       prometheus.Histogram
	schedulerConsecutiveFailure prometheus.Gauge

	broadcastDroppedTotal    prometheus.Counter
	broadcastSubscriberGauge prometheus.Gauge
)

// InitMetrics registers every metric exactly once.
func InitMetrics() {
	once.Do(func() {
		weatherFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weatherops_weather_fetch_total",
			Help: "Total weather fetches by source and status.",
		}, []string{"source", "status"})

		weatherFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weatherops_weather_fetch_duration_seconds",
			Help:    "Duration of weather fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"})

		weatherFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weatherops_weather_fetch_errors_total",
			Help: "Weather fetch errors by source and error type.",
		}, []string{"source", "error_type"})

		weatherCycleCacheHits = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_weather_cycle_cache_hits_total",
			Help: "Per-tick weather memoization cache hits.",
		})

		weatherCycleCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_weather_cycle_cache_misses_total",
			Help: "Per-tick weather memoization cache misses.",
		})

		aiSuggestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weatherops_ai_suggestions_total",
			Help: "Suggestion engine invocations by outcome (ai, fallback, error).",
		}, []string{"outcome"})

		aiSuggestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "weatherops_ai_suggestion_duration_seconds",
			Help:    "Duration of suggestion engine calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		})

		aiCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_ai_cache_hits_total",
			Help: "Suggestion cache hits.",
		})

		aiCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_ai_cache_misses_total",
			Help: "Suggestion cache misses.",
		})

		alertsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weatherops_alerts_created_total",
			Help: "Weather alerts created by severity.",
		}, []string{"severity"})

		alertsDismissedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_alerts_dismissed_total",
			Help: "Weather alerts dismissed.",
		})

		notifyDeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weatherops_notify_delivered_total",
			Help: "Notification deliveries by sink and status.",
		}, []string{"sink", "status"})

		notifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "weatherops_notify_duration_seconds",
			Help:    "Duration of notification send operations.",
			Buckets: prometheus.DefBuckets,
		})

		notifyBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "weatherops_notify_batch_size",
			Help:    "Size of notification batches.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		})

		schedulerTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_scheduler_ticks_total",
			Help: "Total scheduler tick executions.",
		})

		schedulerBookingsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "weatherops_scheduler_bookings_processed_total",
			Help: "Bookings evaluated by the scheduler by outcome.",
		}, []string{"outcome"})

		schedulerTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "weatherops_scheduler_tick_duration_seconds",
			Help:    "Duration of one scheduler tick.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		})

		schedulerConsecutiveFailure = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weatherops_scheduler_consecutive_failures",
			Help: "Consecutive scheduler tick failures.",
		})

		broadcastDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "weatherops_broadcast_dropped_events_total",
			Help: "Events dropped because a subscriber's buffer was full.",
		})

		broadcastSubscriberGauge = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "weatherops_broadcast_subscribers",
			Help: "Current number of broadcast hub subscribers.",
		})
	})
}

func RecordWeatherFetch(source, status string, duration time.Duration) {
	weatherFetchTotal.WithLabelValues(source, status).Inc()
	weatherFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordWeatherFetchError(source, errorType string) {
	weatherFetchErrors.WithLabelValues(source, errorType).Inc()
}

func RecordWeatherCycleCacheHit()  { weatherCycleCacheHits.Inc() }
func RecordWeatherCycleCacheMiss() { weatherCycleCacheMisses.Inc() }

func RecordAISuggestion(outcome string, duration time.Duration) {
	aiSuggestionsTotal.WithLabelValues(outcome).Inc()
	aiSuggestionDuration.Observe(duration.Seconds())
}

func RecordAICacheHit()  { aiCacheHitsTotal.Inc() }
func RecordAICacheMiss() { aiCacheMissesTotal.Inc() }

func RecordAlertCreated(severity string) { alertsCreatedTotal.WithLabelValues(severity).Inc() }
func RecordAlertDismissed()              { alertsDismissedTotal.Inc() }

func RecordNotifyDelivered(sink, status string, duration time.Duration, batchSize int) {
	notifyDeliveredTotal.WithLabelValues(sink, status).Inc()
	notifyDuration.Observe(duration.Seconds())
	notifyBatchSize.Observe(float64(batchSize))
}

func RecordSchedulerTick(duration time.Duration) {
	schedulerTicksTotal.Inc()
	schedulerTickDuration.Observe(duration.Seconds())
}

func RecordSchedulerBookingOutcome(outcome string) {
	schedulerBookingsProcessed.WithLabelValues(outcome).Inc()
}

func SetSchedulerConsecutiveFailures(count int) {
	schedulerConsecutiveFailure.Set(float64(count))
}

func RecordBroadcastDropped() { broadcastDroppedTotal.Inc() }
func SetBroadcastSubscribers(n int) { broadcastSubscriberGauge.Set(float64(n)) }
