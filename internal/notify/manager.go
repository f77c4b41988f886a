package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registration is the active background script registration.
type Registration interface {
	ShowNotification(ctx context.Context, n Notification) error
	Subscribe(ctx context.Context, applicationServerKey string) (*Subscription, error)
}

// Platform is the host that grants permission and provides the registration.
type Platform interface {
	Supported() bool
	Ready(ctx context.Context) (Registration, error)
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
}

// PageNotifier is implemented by platforms that can show a notification from
// the page itself when no background script is registered.
type PageNotifier interface {
	ShowPageNotification(ctx context.Context, n Notification) error
}

// Manager drives a Platform through initialize, permission, subscribe and show.
// It is created per client and released with Close.
type Manager struct {
	platform       Platform
	vapidPublicKey string
	now            func() time.Time

	mu           sync.Mutex
	registration Registration
	prompted     bool
	closed       bool
}

// NewManager creates an uninitialized Manager.
func NewManager(platform Platform, vapidPublicKey string) *Manager {
	return &Manager{
		platform:       platform,
		vapidPublicKey: vapidPublicKey,
		now:            time.Now,
	}
}

// Initialize binds to the active registration. It returns false when the
// platform cannot show notifications. Calling it again is a no-op.
func (m *Manager) Initialize(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	if m.registration != nil {
		return true
	}
	if !m.platform.Supported() {
		slog.Warn("notifications not supported by client")
		return false
	}

	reg, err := m.platform.Ready(ctx)
	if err != nil {
		slog.Error("failed to initialize notification manager", slog.Any("err", err))
		return false
	}
	m.registration = reg
	return true
}

// RequestPermission returns the decided permission, prompting at most once otherwise.
func (m *Manager) RequestPermission(ctx context.Context) Permission {
	if !m.platform.Supported() {
		return PermissionDenied
	}

	current := m.platform.Permission()
	if current.Decided() {
		return current
	}

	m.mu.Lock()
	if m.prompted {
		m.mu.Unlock()
		return current
	}
	m.prompted = true
	m.mu.Unlock()

	decision, err := m.platform.RequestPermission(ctx)
	if err != nil {
		slog.Error("failed to request notification permission", slog.Any("err", err))
		return PermissionDefault
	}
	return decision
}

// SubscribeToPush registers a push subscription for the server key. It
// returns nil when not initialized or when the platform rejects it.
func (m *Manager) SubscribeToPush(ctx context.Context) *Subscription {
	m.mu.Lock()
	reg := m.registration
	m.mu.Unlock()

	if reg == nil {
		slog.Error("background script not registered")
		return nil
	}

	sub, err := reg.Subscribe(ctx, m.vapidPublicKey)
	if err != nil {
		slog.Error("failed to subscribe to push notifications", slog.Any("err", err))
		return nil
	}
	slog.Info("push subscription successful", slog.String("endpoint", sub.Endpoint))
	return sub
}

// ShowNotification displays opts once permission is granted. Without
// permission it logs a warning and returns nil. Without a registration it
// falls back to a page notification when the platform offers one.
func (m *Manager) ShowNotification(ctx context.Context, opts Options) error {
	if m.RequestPermission(ctx) != PermissionGranted {
		slog.Warn("notification permission not granted")
		return nil
	}

	m.mu.Lock()
	reg := m.registration
	m.mu.Unlock()

	n := NewNotification(opts, m.now())
	if reg == nil {
		pn, ok := m.platform.(PageNotifier)
		if !ok {
			return ErrNotInitialized
		}
		if err := pn.ShowPageNotification(ctx, n); err != nil {
			return fmt.Errorf("failed to show page notification: %w", err)
		}
		return nil
	}

	if err := reg.ShowNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}

// Close releases the registration. A closed Manager does not initialize again.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registration = nil
	m.closed = true
}
