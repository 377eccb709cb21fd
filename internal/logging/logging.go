// Package logging wraps zap with the field helpers the rest of the core
// uses to tag log lines with request, booking and component context.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a zap logger at the given level ("debug", "info", "warn",
// "error"): zap's JSON production config when env is "production", its
// console development config otherwise.
func New(level string, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn", "warning":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// WithComponent tags a logger with the component that owns it (weather,
// scheduler, alerts, ...).
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	return logger.With(zap.String("component", component))
}

// WithRequestID tags a logger with the current request id.
func WithRequestID(logger *zap.Logger, requestID string) *zap.Logger {
	return logger.With(zap.String("request_id", requestID))
}

// WithBooking tags a logger with a booking id.
func WithBooking(logger *zap.Logger, bookingID string) *zap.Logger {
	return logger.With(zap.String("booking_id", bookingID))
}
