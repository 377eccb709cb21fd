// @title WeatherOps API
// @version 1.0
// @description Operational core for a flight school's weather-aware scheduling.
// @BasePath /
// @schemes http
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightschool/weatherops/internal/alerts"
	"github.com/flightschool/weatherops/internal/apperrors"
	"github.com/flightschool/weatherops/internal/booking"
	"github.com/flightschool/weatherops/internal/broadcast"
	"github.com/flightschool/weatherops/internal/config"
	"github.com/flightschool/weatherops/internal/dbstore"
	"github.com/flightschool/weatherops/internal/health"
	"github.com/flightschool/weatherops/internal/httpapi"
	"github.com/flightschool/weatherops/internal/httpmw"
	"github.com/flightschool/weatherops/internal/logging"
	"github.com/flightschool/weatherops/internal/metrics"
	"github.com/flightschool/weatherops/internal/reschedule"
	"github.com/flightschool/weatherops/internal/suggest"
	"github.com/flightschool/weatherops/internal/weather"

	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/flightschool/weatherops/internal/docs"
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

	var aiClient suggest.AIClient
	if cfg.OpenAIAPIKey != "" {
		aiClient = suggest.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	}
	suggestCache := suggest.NewCache(cfg.AICacheTTL)
	defer suggestCache.Stop()
	engine := suggest.NewEngine(aiClient, suggestCache, logger)

	var forecastProvider reschedule.ForecastProvider
	if cfg.WeatherAPIBaseURL != "" {
		forecastProvider = weather.NewForecastClient(cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey, cfg.WeatherFetchTimeout, logger)
	}
	reschedules := reschedule.NewService(bookingStore, engine, forecastProvider, hub, logger)

	healthChecker := health.NewChecker(db, redisClient, logger, "dev", nil)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpapi.NewValidator()
	e.HTTPErrorHandler = apperrors.EchoHandler(logger)

	rateLimiter := httpmw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	e.Use(httpmw.Recovery(logger))
	e.Use(httpmw.RequestLogger(logger))
	e.Use(httpmw.CORS(cfg.AllowedOrigins))
	e.Use(rateLimiter.Middleware())
	e.Use(httpmw.BearerAuth(cfg.APIKey))
	e.Use(middleware.RequestID())

	httpapi.Register(e, bookingStore, alertStore, reschedules, hub, logger)

	e.GET("/healthz", echo.WrapHandler(healthChecker.Handler()))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("weatherops server started", zap.String("port", cfg.HTTPPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
