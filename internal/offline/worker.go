package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPushTitle is used when a push payload has no title.
	DefaultPushTitle = "Price Alert"
	// DefaultPushBody is used when a push payload has no body.
	DefaultPushBody = "Price alert notification"
)

var (
	// ErrNoResponse is returned when the network rejected and the cache had nothing.
	ErrNoResponse = errors.New("no network or cached response")
)

// Handler processes one event.
type Handler func(ctx context.Context, e *Event)

// Deps are the platform facilities the worker acts on.
type Deps struct {
	Caches       CacheStorage
	Fetcher      Fetcher
	Clients      Clients
	Registration Registration
}

// Worker dispatches events to a table of handlers.
type Worker struct {
	conf     Config
	deps     Deps
	handlers map[Kind]Handler
	now      func() time.Time
}

// NewWorker creates a worker with the install, activate, fetch, push and
// notificationclick handlers registered.
func NewWorker(conf Config, deps Deps) *Worker {
	w := &Worker{
		conf: conf,
		deps: deps,
		now:  time.Now,
	}
	w.handlers = map[Kind]Handler{
		KindInstall:           w.install,
		KindActivate:          w.activate,
		KindFetch:             w.fetch,
		KindPush:              w.push,
		KindNotificationClick: w.notificationClick,
	}
	return w
}

// Handle replaces the handler for kind.
func (w *Worker) Handle(kind Kind, h Handler) {
	w.handlers[kind] = h
}

// Dispatch runs the handler for e and blocks until all work it waited on has
// completed. The response is only set for fetch events the handler answered.
func (w *Worker) Dispatch(ctx context.Context, e *Event) (*Response, error) {
	h, ok := w.handlers[e.Kind]
	if !ok {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	e.group = g
	e.ctx = gctx
	h(gctx, e)
	if err := g.Wait(); err != nil {
		slog.Error("background event failed", slog.String("kind", string(e.Kind)), slog.Any("err", err))
		return nil, fmt.Errorf("%s event: %w", e.Kind, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.response, nil
}

// install pre-caches the static list, then activates without waiting for older instances.
func (w *Worker) install(_ context.Context, e *Event) {
	e.WaitUntil(func(ctx context.Context) error {
		cache, err := w.deps.Caches.Open(ctx, w.conf.CacheName)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.AddAll(ctx, w.conf.Precache); err != nil {
			return fmt.Errorf("failed to pre-cache: %w", err)
		}
		return w.deps.Registration.SkipWaiting(ctx)
	})
}

// activate deletes every cache but the current one, then claims open pages.
func (w *Worker) activate(_ context.Context, e *Event) {
	e.WaitUntil(func(ctx context.Context) error {
		names, err := w.deps.Caches.Keys(ctx)
		if err != nil {
			return fmt.Errorf("failed to list caches: %w", err)
		}
		var g errgroup.Group
		for _, name := range names {
			if name == w.conf.CacheName {
				continue
			}
			g.Go(func() error {
				_, err := w.deps.Caches.Delete(ctx, name)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to delete old cache: %w", err)
		}
		return w.deps.Clients.Claim(ctx)
	})
}

func (w *Worker) fetch(_ context.Context, e *Event) {
	req := e.Request
	if w.conf.IsStatic(req.URL) {
		e.RespondWith(func(ctx context.Context) (*Response, error) {
			return w.cacheFirst(ctx, req)
		})
		return
	}
	e.RespondWith(func(ctx context.Context) (*Response, error) {
		return w.networkFirst(ctx, req)
	})
}

func (w *Worker) cacheFirst(ctx context.Context, req Request) (*Response, error) {
	cached, err := w.deps.Caches.Match(ctx, req)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}
	return w.deps.Fetcher.Fetch(ctx, req)
}

// networkFirst falls back to the cache only when the request rejects, not on error statuses.
func (w *Worker) networkFirst(ctx context.Context, req Request) (*Response, error) {
	resp, fetchErr := w.deps.Fetcher.Fetch(ctx, req)
	if fetchErr == nil {
		return resp, nil
	}
	cached, err := w.deps.Caches.Match(ctx, req)
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoResponse, fetchErr)
	}
	return cached, nil
}

func (w *Worker) push(_ context.Context, e *Event) {
	if len(e.Data) == 0 {
		return
	}
	e.WaitUntil(func(ctx context.Context) error {
		n, err := PushNotification(e.Data, w.now())
		if err != nil {
			return err
		}
		return w.deps.Registration.ShowNotification(ctx, n)
	})
}

// notificationClick closes the notification; view or a plain tap opens the
// carried URL once, dismiss does nothing more.
func (w *Worker) notificationClick(_ context.Context, e *Event) {
	if e.Notification == nil {
		return
	}
	e.Notification.Close()
	if e.Action == notify.ActionDismiss {
		return
	}
	target := e.Notification.Notification().Data.URL
	if target == "" {
		target = notify.DefaultURL
	}
	e.WaitUntil(func(ctx context.Context) error {
		return w.deps.Clients.OpenWindow(ctx, target)
	})
}

// ParsePayload decodes a push payload and fills in the default title, body and URL.
func ParsePayload(data []byte) (notify.Payload, error) {
	var p notify.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return notify.Payload{}, fmt.Errorf("invalid push payload: %w", err)
	}
	if p.Title == "" {
		p.Title = DefaultPushTitle
	}
	if p.Body == "" {
		p.Body = DefaultPushBody
	}
	if p.URL == "" {
		p.URL = notify.DefaultURL
	}
	return p, nil
}

// PushNotification builds the notification displayed for a push payload.
func PushNotification(data []byte, now time.Time) (notify.Notification, error) {
	p, err := ParsePayload(data)
	if err != nil {
		return notify.Notification{}, err
	}
	return notify.NewNotification(notify.Options{Title: p.Title, Body: p.Body, URL: p.URL}, now), nil
}
