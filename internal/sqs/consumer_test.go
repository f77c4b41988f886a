package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/price-alerts-dashboard/internal/metrics"
	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/price-alerts"

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	deleted            []string
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	m.deleted = append(m.deleted, aws.ToString(params.ReceiptHandle))
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

// MockBroadcaster is a testify mock of Broadcaster.
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, p notify.Payload) (notify.Result, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(notify.Result), args.Error(1)
}

func relayed(outcome string) float64 {
	return testutil.ToFloat64(metrics.RelayMessages.WithLabelValues(outcome))
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("relays the payload", func(t *testing.T) {
		// given
		broadcaster := new(MockBroadcaster)
		broadcaster.On("Broadcast", mock.Anything, notify.Payload{Title: "Drop!", Body: "Now $5", URL: "/p/1"}).
			Return(notify.Result{Sent: 2}, nil).Once()
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, broadcaster)
		before := relayed(outcomeRelayed)

		message := types.Message{
			Body:          aws.String(`{"title":"Drop!","body":"Now $5","url":"/p/1"}`),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		broadcaster.AssertExpectations(t)
		assert.Equal(t, before+1, relayed(outcomeRelayed))
	})

	t.Run("fills in payload defaults", func(t *testing.T) {
		broadcaster := new(MockBroadcaster)
		broadcaster.On("Broadcast", mock.Anything, notify.Payload{Title: "Price Alert", Body: "Price alert notification", URL: "/"}).
			Return(notify.Result{}, nil).Once()
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, broadcaster)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(`{}`)})

		require.NoError(t, err)
		broadcaster.AssertExpectations(t)
	})

	t.Run("nil message body", func(t *testing.T) {
		// given
		broadcaster := new(MockBroadcaster)
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, broadcaster)

		// when
		err := consumer.processMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		broadcaster := new(MockBroadcaster)
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, broadcaster)
		before := relayed(outcomeInvalid)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(`{"invalid json`)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
		assert.Equal(t, before+1, relayed(outcomeInvalid))
	})

	t.Run("broadcast failure", func(t *testing.T) {
		broadcaster := new(MockBroadcaster)
		broadcaster.On("Broadcast", mock.Anything, mock.Anything).Return(notify.Result{}, errors.New("db down")).Once()
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, broadcaster)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(`{"title":"Drop!"}`)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to relay price alert")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		// given
		ctx := context.Background()
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.NotNil(t, params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		// when
		err := consumer.deleteMessage(ctx, types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		// given
		expectedErr := errors.New("failed to delete")
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, expectedErr
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		// when
		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("deletes only relayed messages", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{Body: aws.String(`{"title":"Drop!","url":"/p/1"}`), ReceiptHandle: aws.String("good")},
						{Body: aws.String(`{"invalid json`), ReceiptHandle: aws.String("bad")},
						{Body: aws.String(`{"title":"Retry"}`), ReceiptHandle: aws.String("retry")},
					},
				}, nil
			},
		}
		broadcaster := new(MockBroadcaster)
		broadcaster.On("Broadcast", mock.Anything, mock.MatchedBy(func(p notify.Payload) bool { return p.Title == "Drop!" })).
			Return(notify.Result{Sent: 1}, nil).Once()
		broadcaster.On("Broadcast", mock.Anything, mock.MatchedBy(func(p notify.Payload) bool { return p.Title == "Retry" })).
			Return(notify.Result{}, errors.New("push service down")).Once()
		consumer := NewConsumer(mockClient, testQueueURL, broadcaster)

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, mockClient.deleted)
		broadcaster.AssertExpectations(t)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		// given
		expectedErr := errors.New("failed to receive")
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, expectedErr
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, new(MockBroadcaster))

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})
}

func TestConsumer_Start(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	mockClient := &mockSQSConsumerClient{
		receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return &sqs.ReceiveMessageOutput{}, nil
		},
	}
	consumer := NewConsumer(mockClient, testQueueURL, new(MockBroadcaster))

	// when
	err := consumer.Start(ctx)

	// then
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}
