package notify

import (
	"context"
	"time"

	"github.com/flightschool/weatherops/internal/metrics"

	"go.uber.org/zap"
)

// LogSink logs notifications instead of delivering them. Used in
// development and in any environment without FCM credentials
// configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, tokens []string, n Notification) error {
	start := time.Now()
	s.logger.Info("notification (log sink)",
		zap.Strings("tokens", tokens),
		zap.String("title", n.Title),
		zap.String("body", n.Body))
	metrics.RecordNotifyDelivered("log", "ok", time.Since(start), len(tokens))
	return nil
}
