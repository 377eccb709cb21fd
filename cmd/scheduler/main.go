package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightschool/weatherops/internal/alerts"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/config"
	"github.com/flightschool/weatherops/internal/dbstore"
	"github.com/flightschool/weatherops/internal/health"
	"github.com/flightschool/weatherops/internal/logging"
	"github.com/flightschool/weatherops/internal/metrics"
	"github.com/flightschool/weatherops/internal/notify"
	"github.com/flightschool/weatherops/internal/scheduler"
	"github.com/flightschool/weatherops/internal/weather"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting weatherops scheduler",
		zap.String("version", version),
		zap.String("build_time", buildTime),
		zap.String("git_commit", gitCommit))

	metrics.InitMetrics()

	db, err := dbstore.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to unwrap sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := dbstore.Migrate(sqlDB, dbstore.MigrateConfig{MigrationsPath: "migrations", DatabaseURL: cfg.DatabaseURL}, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer redisClient.Close()

	var alertCache *alerts.RedisCache
	if cache, err := alerts.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, logger); err != nil {
		logger.Warn("redis unavailable, alerts will read through to the database", zap.Error(err))
	} else {
		alertCache = cache
		defer alertCache.Close()
	}

	bookingStore := booking.NewStore(db)
	alertStore := alerts.NewStore(db, alertCache)
	hub := broadcast.NewHub(logger)

	restSource := weather.NewRESTSource(cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey, cfg.WeatherFetchTimeout)
	var htmlSource weather.Source
	if cfg.WeatherHTMLFallback != "" {
		htmlSource = weather.NewHTMLSource(cfg.WeatherHTMLFallback, nil)
	}
	weatherClient := weather.NewClient(restSource, htmlSource, cfg.WeatherRetryAttempts, logger)

	var notifier notify.Sink
	if cfg.FCMCredentialsPath != "" {
		pushSink, err := notify.NewPushSink(cfg.FCMCredentialsPath, logger)
		if err != nil {
			logger.Warn("failed to initialize FCM notifier, falling back to log sink", zap.Error(err))
			notifier = notify.NewLogSink(logger)
		} else {
			notifier = pushSink
		}
	} else {
		notifier = notify.NewLogSink(logger)
	}

	sched := scheduler.New(bookingStore, weatherClient, alertStore, hub, notifier, cfg.SchedulerInterval, logger)

	healthChecker := health.NewChecker(db, redisClient, logger, version, sched.IsRunning)

	metricsServer := NewMetricsServer(cfg.MetricsPort, healthChecker, logger)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("scheduler exited with error", zap.Error(err))
			healthChecker.RecordError()
		}
	}()

	logger.Info("weatherops scheduler started",
		zap.Duration("interval", cfg.SchedulerInterval),
		zap.String("metrics_port", cfg.MetricsPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error stopping metrics server", zap.Error(err))
	}

	logger.Info("weatherops scheduler stopped")
}
