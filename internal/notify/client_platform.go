package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

// ClientReport is what the browser reports about its notification support.
// Decision carries the outcome of a permission prompt the browser already
// showed for the user's click.
type ClientReport struct {
	Supported    bool          `json:"supported"`
	Registered   bool          `json:"registered"`
	Permission   Permission    `json:"permission"`
	Decision     Permission    `json:"decision,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// ClientPlatform is a Platform backed by one browser's report. Push
// subscriptions are stored for the session; notifications go out over Web Push
// when the session has a subscription and are otherwise queued for the page
// to display itself.
type ClientPlatform struct {
	report       ClientReport
	registration *ClientRegistration

	mu         sync.Mutex
	permission Permission
}

// NewClientPlatform builds a platform for sessionID. broadcaster may be nil when push is not configured.
func NewClientPlatform(report ClientReport, sessionID string, subs repository.SubscriptionRepository, broadcaster *Broadcaster) *ClientPlatform {
	permission := report.Permission
	if !permission.Decided() {
		permission = PermissionDefault
	}
	return &ClientPlatform{
		report:     report,
		permission: permission,
		registration: &ClientRegistration{
			sessionID:    sessionID,
			subscription: report.Subscription,
			subs:         subs,
			broadcaster:  broadcaster,
		},
	}
}

// Supported reports whether the browser has both notifications and a background script.
func (p *ClientPlatform) Supported() bool {
	return p.report.Supported
}

// Ready returns the registration once the browser reported its background script active.
func (p *ClientPlatform) Ready(_ context.Context) (Registration, error) {
	if !p.report.Registered {
		return nil, errors.New("background script not registered")
	}
	return p.registration, nil
}

// Permission returns the current permission.
func (p *ClientPlatform) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// RequestPermission returns the prompt outcome the browser reported. Without
// one the permission stays undecided.
func (p *ClientPlatform) RequestPermission(_ context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.report.Decision.Decided() {
		p.permission = p.report.Decision
	}
	return p.permission, nil
}

// ShowPageNotification queues n for the page without trying Web Push. Page
// notifications carry no actions.
func (p *ClientPlatform) ShowPageNotification(_ context.Context, n Notification) error {
	n.Actions = nil
	p.registration.queue(n)
	return nil
}

// Registration returns the platform's registration, for reading pending notifications.
func (p *ClientPlatform) Registration() *ClientRegistration {
	return p.registration
}

// ClientRegistration stands in for the browser's background script registration.
type ClientRegistration struct {
	sessionID    string
	subscription *Subscription
	subs         repository.SubscriptionRepository
	broadcaster  *Broadcaster

	mu      sync.Mutex
	pending []Notification
}

// Subscribe stores the subscription the browser created with applicationServerKey.
func (r *ClientRegistration) Subscribe(ctx context.Context, applicationServerKey string) (*Subscription, error) {
	if applicationServerKey == "" {
		return nil, errors.New("push is not configured")
	}
	if !r.subscription.Valid() {
		return nil, errors.New("client reported no push subscription")
	}
	if r.subs != nil {
		_, err := r.subs.Save(ctx, &model.PushSubscription{
			SessionID: r.sessionID,
			Endpoint:  r.subscription.Endpoint,
			P256dh:    r.subscription.Keys.P256dh,
			Auth:      r.subscription.Keys.Auth,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to store push subscription: %w", err)
		}
	}
	return r.subscription, nil
}

// ShowNotification pushes n to the session's subscriptions, or queues it
// when nothing was delivered.
func (r *ClientRegistration) ShowNotification(ctx context.Context, n Notification) error {
	if r.broadcaster != nil {
		result, err := r.broadcaster.SendToSession(ctx, r.sessionID, Payload{Title: n.Title, Body: n.Body, URL: n.Data.URL})
		if err != nil {
			return err
		}
		if result.Sent > 0 {
			return nil
		}
	}

	r.queue(n)
	return nil
}

func (r *ClientRegistration) queue(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, n)
}

// Pending returns the notifications the page should display itself.
func (r *ClientRegistration) Pending() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.pending...)
}
