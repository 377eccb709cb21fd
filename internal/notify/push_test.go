package notify

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFCMClient struct {
	calls   int
	fail    bool
	resp    *messaging.BatchResponse
}

func (s *stubFCMClient) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("network error")
	}
	return s.resp, nil
}

func TestPushSink_Send_SucceedsOnFirstTry(t *testing.T) {
	client := &stubFCMClient{resp: &messaging.BatchResponse{SuccessCount: 2, FailureCount: 0}}
	sink := NewPushSinkWithClient(client, zap.NewNop())

	err := sink.Send(context.Background(), []string{"t1", "t2"}, Notification{Title: "Alert", Body: "wind"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestPushSink_Send_RetriesOnceThenFails(t *testing.T) {
	client := &stubFCMClient{fail: true}
	sink := NewPushSinkWithClient(client, zap.NewNop())

	err := sink.Send(context.Background(), []string{"t1"}, Notification{Title: "Alert", Body: "wind"})
	require.Error(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestPushSink_Send_NoTokensIsNoop(t *testing.T) {
	client := &stubFCMClient{}
	sink := NewPushSinkWithClient(client, zap.NewNop())

	err := sink.Send(context.Background(), nil, Notification{})
	require.NoError(t, err)
	assert.Equal(t, 0, client.calls)
}

func TestSplitIntoBatches(t *testing.T) {
	tokens := make([]string, 1200)
	for i := range tokens {
		tokens[i] = "t"
	}
	batches := splitIntoBatches(tokens, 500)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 500)
	assert.Len(t, batches[2], 200)
}
