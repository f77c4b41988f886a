package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iyhunko/price-alerts-dashboard/internal/metrics"
	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Result counts the outcome of one broadcast.
type Result struct {
	Sent   int
	Failed int
	Pruned int
}

// Broadcaster sends a push payload to stored subscriptions and removes the ones
// the push service reports gone.
type Broadcaster struct {
	subs        repository.SubscriptionRepository
	sender      Sender
	concurrency int
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster(subs repository.SubscriptionRepository, sender Sender) *Broadcaster {
	return &Broadcaster{
		subs:        subs,
		sender:      sender,
		concurrency: defaultConcurrency,
	}
}

// Broadcast sends p to every stored subscription.
func (b *Broadcaster) Broadcast(ctx context.Context, p Payload) (Result, error) {
	subs, err := b.subs.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return b.send(ctx, subs, p)
}

// SendToSession sends p to the subscriptions of one session.
func (b *Broadcaster) SendToSession(ctx context.Context, sessionID string, p Payload) (Result, error) {
	subs, err := b.subs.ListBySession(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return b.send(ctx, subs, p)
}

func (b *Broadcaster) send(ctx context.Context, subs []model.PushSubscription, p Payload) (Result, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	var (
		mu     sync.Mutex
		result Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			err := b.sender.Send(gctx, sub, payload)
			switch {
			case err == nil:
				metrics.PushNotificationsSent.WithLabelValues("sent").Inc()
				mu.Lock()
				result.Sent++
				mu.Unlock()
			case errors.Is(err, ErrSubscriptionGone):
				metrics.PushNotificationsSent.WithLabelValues("gone").Inc()
				if delErr := b.subs.DeleteByEndpoint(gctx, sub.Endpoint); delErr != nil && !errors.Is(delErr, repository.ErrNotFound) {
					slog.Error("failed to prune push subscription", slog.String("endpoint", sub.Endpoint), slog.Any("err", delErr))
					break
				}
				metrics.PushSubscriptionsPruned.Inc()
				mu.Lock()
				result.Pruned++
				mu.Unlock()
			default:
				metrics.PushNotificationsSent.WithLabelValues("failed").Inc()
				slog.Error("failed to deliver push notification", slog.String("endpoint", sub.Endpoint), slog.Any("err", err))
				mu.Lock()
				result.Failed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Debug("push broadcast done",
		slog.Int("sent", result.Sent), slog.Int("failed", result.Failed), slog.Int("pruned", result.Pruned))
	return result, nil
}
