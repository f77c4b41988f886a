package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/iyhunko/price-alerts-dashboard/internal/model"
)

// DefaultTTL is how long, in seconds, the push service keeps an undelivered message.
const DefaultTTL = 24 * 60 * 60

// Sender delivers an encrypted payload to one push subscription.
type Sender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload []byte) error
}

// WebPushSender sends VAPID-signed Web Push messages.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	client     webpush.HTTPClient
}

// NewWebPushSender creates a sender for the given VAPID key pair.
// subscriber is a mailto: address or https: URL identifying the operator.
func NewWebPushSender(publicKey, privateKey, subscriber string) *WebPushSender {
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: strings.TrimPrefix(subscriber, "mailto:"),
		ttl:        DefaultTTL,
		client:     http.DefaultClient,
	}
}

// WithHTTPClient replaces the client used to reach push services.
func (s *WebPushSender) WithHTTPClient(client webpush.HTTPClient) *WebPushSender {
	s.client = client
	return s
}

// Send delivers payload to sub. It returns ErrSubscriptionGone when the push
// service answers 404 or 410.
func (s *WebPushSender) Send(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("push service responded with status %d", resp.StatusCode)
	}
	return nil
}
