// Package health reports the liveness of the database, cache and
// scheduler so operators and load balancers can tell a degraded process
// from a dead one.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status is the JSON body /healthz returns.
type Status struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Version    string            `json:"version"`
	Uptime     time.Duration     `json:"uptime"`
	Components map[string]string `json:"components"`
	ErrorCount int               `json:"error_count"`
}

// Checker probes dependency health on demand.
type Checker struct {
	db            *gorm.DB
	redis         *redis.Client
	logger        *zap.Logger
	version       string
	startTime     time.Time
	schedulerFunc func() bool
	errorCounter  *ErrorCounter
}

// ErrorCounter is a sliding-window error rate tracker; a burst of
// downstream failures shows up in /healthz before it shows up as a page.
type ErrorCounter struct {
	mu      sync.RWMutex
	errors  []time.Time
	window  time.Duration
	maxRate int
}

func NewErrorCounter(window time.Duration, maxRate int) *ErrorCounter {
	return &ErrorCounter{errors: make([]time.Time, 0), window: window, maxRate: maxRate}
}

func (ec *ErrorCounter) Add() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	now := time.Now()
	ec.errors = append(ec.errors, now)
	ec.cleanup(now)
}

func (ec *ErrorCounter) Count() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	ec.cleanup(time.Now())
	return len(ec.errors)
}

func (ec *ErrorCounter) cleanup(now time.Time) {
	cutoff := now.Add(-ec.window)
	valid := make([]time.Time, 0, len(ec.errors))
	for _, t := range ec.errors {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	ec.errors = valid
}

func (ec *ErrorCounter) ShouldAlert() bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if len(ec.errors) == 0 {
		return false
	}
	perMinute := float64(len(ec.errors)) / ec.window.Minutes()
	return int(perMinute) > ec.maxRate
}

// NewChecker builds a Checker. redisClient may be nil (redis is an
// optional cache layer, not a hard dependency). schedulerFunc reports
// whether the scheduler's tick loop is currently running.
func NewChecker(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger, version string, schedulerFunc func() bool) *Checker {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Checker{
		db:            db,
		redis:         redisClient,
		logger:        logger,
		version:       version,
		startTime:     time.Now(),
		schedulerFunc: schedulerFunc,
		errorCounter:  NewErrorCounter(5*time.Minute, 10),
	}
}

func (c *Checker) RecordError() {
	c.errorCounter.Add()
	if c.errorCounter.ShouldAlert() {
		c.logger.Warn("high error rate detected",
			zap.Int("error_count", c.errorCounter.Count()),
			zap.Duration("window", 5*time.Minute))
	}
}

func (c *Checker) Check(ctx context.Context) *Status {
	components := make(map[string]string)
	healthy := true

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err != nil {
			components["database"] = "error: " + err.Error()
			healthy = false
		} else if err := sqlDB.PingContext(ctx); err != nil {
			components["database"] = "error: " + err.Error()
			healthy = false
		} else {
			components["database"] = "ok"
		}
	} else {
		components["database"] = "not_configured"
	}

	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = "error: " + err.Error()
		} else {
			components["redis"] = "ok"
		}
	} else {
		components["redis"] = "not_configured"
	}

	if c.schedulerFunc != nil {
		if c.schedulerFunc() {
			components["scheduler"] = "running"
		} else {
			components["scheduler"] = "stopped"
			healthy = false
		}
	} else {
		components["scheduler"] = "not_configured"
	}

	status := "ok"
	if !healthy {
		status = "error"
	}

	return &Status{
		Status:     status,
		Timestamp:  time.Now(),
		Version:    c.version,
		Uptime:     time.Since(c.startTime),
		Components: components,
		ErrorCount: c.errorCounter.Count(),
	}
}

// Handler adapts Check to a plain net/http handler for mounting outside
// echo (the scheduler process has no echo router of its own).
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := c.Check(ctx)
		w.Header().Set("Content-Type", "application/json")
		if status.Status == "ok" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			c.logger.Error("failed to encode health status", zap.Error(err))
		}
	}
}
