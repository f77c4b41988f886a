package sqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/price-alerts-dashboard/internal/metrics"
	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"github.com/iyhunko/price-alerts-dashboard/internal/offline"
)

const (
	outcomeRelayed = "relayed"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)

var errNilBody = errors.New("message body is nil")

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Broadcaster delivers a push payload to every stored subscription.
type Broadcaster interface {
	Broadcast(ctx context.Context, p notify.Payload) (notify.Result, error)
}

// Consumer relays price alerts from the SQS queue to Web Push subscribers.
// Each message body is a push payload {title, body, url}.
type Consumer struct {
	client      ConsumerAPI
	queueURL    string
	broadcaster Broadcaster
}

// NewConsumer creates a new SQS Consumer with the given client, queue URL and broadcaster.
func NewConsumer(client ConsumerAPI, queueURL string, broadcaster Broadcaster) *Consumer {
	return &Consumer{
		client:      client,
		queueURL:    queueURL,
		broadcaster: broadcaster,
	}
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting price alert relay", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping price alert relay")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20, // Long polling
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		// Delete message only after it was relayed
		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		metrics.RelayMessages.WithLabelValues(outcomeInvalid).Inc()
		return errNilBody
	}

	payload, err := offline.ParsePayload([]byte(*message.Body))
	if err != nil {
		metrics.RelayMessages.WithLabelValues(outcomeInvalid).Inc()
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	result, err := c.broadcaster.Broadcast(ctx, payload)
	if err != nil {
		metrics.RelayMessages.WithLabelValues(outcomeFailed).Inc()
		return fmt.Errorf("failed to relay price alert: %w", err)
	}

	metrics.RelayMessages.WithLabelValues(outcomeRelayed).Inc()
	slog.Info("Relayed price alert",
		slog.String("title", payload.Title),
		slog.String("url", payload.URL),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
		slog.Int("pruned", result.Pruned),
	)
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
