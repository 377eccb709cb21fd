package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/flightschool/weatherops/internal/metrics"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// maxTokensPerBatch is FCM's multicast send limit.
const maxTokensPerBatch = 500

// FCMClient is the subset of the messaging client this package needs,
// so tests can substitute a stub.
type FCMClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushSink delivers notifications via Firebase Cloud Messaging.
type PushSink struct {
	client FCMClient
	logger *zap.Logger
}

// NewPushSink initializes a Firebase app from the service account
// credentials file and wraps its messaging client.
func NewPushSink(credentialsPath string, logger *zap.Logger) (*PushSink, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FCM credentials path is required")
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &PushSink{client: client, logger: logger}, nil
}

// NewPushSinkWithClient builds a PushSink around an already-constructed
// client, used by tests.
func NewPushSinkWithClient(client FCMClient, logger *zap.Logger) *PushSink {
	return &PushSink{client: client, logger: logger}
}

// Send splits tokens into FCM-sized batches, retries each failed batch
// once, and only returns an error if every batch failed.
func (s *PushSink) Send(ctx context.Context, tokens []string, n Notification) error {
	if len(tokens) == 0 {
		return nil
	}

	batches := splitIntoBatches(tokens, maxTokensPerBatch)
	totalSuccess, totalFailure := 0, 0

	for i, batch := range batches {
		start := time.Now()
		message := &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		}

		resp, err := s.client.SendEachForMulticast(ctx, message)
		if err != nil {
			s.logger.Warn("FCM batch send failed, retrying once", zap.Int("batch", i+1), zap.Error(err))
			resp, err = s.client.SendEachForMulticast(ctx, message)
		}

		if err != nil {
			s.logger.Error("FCM batch retry failed", zap.Int("batch", i+1), zap.Error(err))
			totalFailure += len(batch)
			metrics.RecordNotifyDelivered("push", "error", time.Since(start), len(batch))
			continue
		}

		totalSuccess += resp.SuccessCount
		totalFailure += resp.FailureCount
		metrics.RecordNotifyDelivered("push", "ok", time.Since(start), len(batch))
	}

	if totalSuccess == 0 && totalFailure > 0 {
		return fmt.Errorf("all %d FCM deliveries failed", totalFailure)
	}
	return nil
}

func splitIntoBatches(tokens []string, size int) [][]string {
	var batches [][]string
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[i:end])
	}
	return batches
}
