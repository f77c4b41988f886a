package offline

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	worker  *Worker
	caches  *memCaches
	fetcher *stubFetcher
	clients *stubClients
	reg     *stubRegistration
}

func newHarness(cacheNames ...string) *harness {
	h := &harness{
		caches:  newMemCaches(cacheNames...),
		fetcher: &stubFetcher{responses: map[string]*Response{}},
		clients: &stubClients{},
		reg:     &stubRegistration{},
	}
	h.worker = NewWorker(DefaultConfig(""), Deps{
		Caches:       h.caches,
		Fetcher:      h.fetcher,
		Clients:      h.clients,
		Registration: h.reg,
	})
	return h
}

func TestConfig_IsStatic(t *testing.T) {
	conf := DefaultConfig("")

	tests := []struct {
		url  string
		want bool
	}{
		{"https://app.example/", true},
		{"https://app.example/manifest.json", true},
		{"https://app.example/manifest.json?v=2", true},
		{"https://app.example/static/app.js", true},
		{"https://app.example/api/products", false},
		{"https://app.example/?product=x", false},
		{"https://app.example/ui/select", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, conf.IsStatic(tt.url))
		})
	}
}

func TestWorker_Install(t *testing.T) {
	// given
	h := newHarness()

	// when
	_, err := h.worker.Dispatch(context.Background(), &Event{Kind: KindInstall})

	// then
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/manifest.json"}, h.caches.caches[DefaultCacheName].added)
	assert.True(t, h.reg.skipped)
}

func TestWorker_Activate(t *testing.T) {
	// given
	h := newHarness("price-alerts-v0", DefaultCacheName, "other")

	// when
	_, err := h.worker.Dispatch(context.Background(), &Event{Kind: KindActivate})

	// then
	require.NoError(t, err)
	sort.Strings(h.caches.deleted)
	assert.Equal(t, []string{"other", "price-alerts-v0"}, h.caches.deleted)
	assert.Contains(t, h.caches.caches, DefaultCacheName)
	assert.True(t, h.clients.claimed)
}

func TestWorker_Fetch(t *testing.T) {
	ctx := context.Background()
	cached := &Response{Status: 200, Body: []byte("cached"), FromCache: true}
	fresh := &Response{Status: 200, Body: []byte("fresh")}

	t.Run("static is cache first", func(t *testing.T) {
		// given
		h := newHarness()
		h.caches.entries["https://app.example/static/app.js"] = cached
		h.fetcher.responses["https://app.example/static/app.js"] = fresh

		// when
		resp, err := h.worker.Dispatch(ctx, &Event{Kind: KindFetch, Request: Request{URL: "https://app.example/static/app.js"}})

		// then
		require.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.Empty(t, h.fetcher.calls)
	})

	t.Run("static miss goes to network", func(t *testing.T) {
		h := newHarness()
		h.fetcher.responses["https://app.example/manifest.json"] = fresh

		resp, err := h.worker.Dispatch(ctx, &Event{Kind: KindFetch, Request: Request{URL: "https://app.example/manifest.json"}})

		require.NoError(t, err)
		assert.Equal(t, fresh, resp)
	})

	t.Run("dynamic is network first", func(t *testing.T) {
		h := newHarness()
		h.caches.entries["https://app.example/api/products"] = cached
		h.fetcher.responses["https://app.example/api/products"] = fresh

		resp, err := h.worker.Dispatch(ctx, &Event{Kind: KindFetch, Request: Request{URL: "https://app.example/api/products"}})

		require.NoError(t, err)
		assert.Equal(t, fresh, resp)
	})

	t.Run("error status is not a fallback trigger", func(t *testing.T) {
		// given
		h := newHarness()
		h.caches.entries["https://app.example/api/products"] = cached
		h.fetcher.responses["https://app.example/api/products"] = &Response{Status: 500}

		// when
		resp, err := h.worker.Dispatch(ctx, &Event{Kind: KindFetch, Request: Request{URL: "https://app.example/api/products"}})

		// then
		require.NoError(t, err)
		assert.Equal(t, 500, resp.Status)
	})

	t.Run("rejected request falls back to cache", func(t *testing.T) {
		h := newHarness()
		h.caches.entries["https://app.example/api/products"] = cached
		h.fetcher.reject = true

		resp, err := h.worker.Dispatch(ctx, &Event{Kind: KindFetch, Request: Request{URL: "https://app.example/api/products"}})

		require.NoError(t, err)
		assert.Equal(t, cached, resp)
	})

	t.Run("rejected request without cache", func(t *testing.T) {
		h := newHarness()
		h.fetcher.reject = true

		resp, err := h.worker.Dispatch(ctx, &Event{Kind: KindFetch, Request: Request{URL: "https://app.example/api/products"}})

		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, ErrNoResponse))
	})
}

func TestWorker_Push(t *testing.T) {
	ctx := context.Background()

	t.Run("shows payload with view action", func(t *testing.T) {
		// given
		h := newHarness()

		// when
		_, err := h.worker.Dispatch(ctx, &Event{Kind: KindPush, Data: []byte(`{"title":"Drop!","body":"Now $5","url":"/p/1"}`)})

		// then
		require.NoError(t, err)
		require.Len(t, h.reg.shown, 1)
		n := h.reg.shown[0]
		assert.Equal(t, "Drop!", n.Title)
		assert.Equal(t, "Now $5", n.Body)
		assert.Equal(t, "/p/1", n.Data.URL)
		require.Len(t, n.Actions, 2)
		assert.Equal(t, notify.ActionView, n.Actions[0].Action)
		assert.Equal(t, notify.ActionDismiss, n.Actions[1].Action)

		// and clicking view opens the carried target
		shown := &shownNotification{n: n}
		_, err = h.worker.Dispatch(ctx, &Event{Kind: KindNotificationClick, Action: notify.ActionView, Notification: shown})
		require.NoError(t, err)
		assert.Equal(t, []string{"/p/1"}, h.clients.opened)
		assert.True(t, shown.closed)
	})

	t.Run("defaults", func(t *testing.T) {
		h := newHarness()

		_, err := h.worker.Dispatch(ctx, &Event{Kind: KindPush, Data: []byte(`{}`)})

		require.NoError(t, err)
		require.Len(t, h.reg.shown, 1)
		assert.Equal(t, "Price Alert", h.reg.shown[0].Title)
		assert.Equal(t, "Price alert notification", h.reg.shown[0].Body)
		assert.Equal(t, "/", h.reg.shown[0].Data.URL)
		assert.Equal(t, "/icons/icon-192x192.png", h.reg.shown[0].Icon)
		assert.Equal(t, "/icons/icon-72x72.png", h.reg.shown[0].Badge)
	})

	t.Run("no data shows nothing", func(t *testing.T) {
		h := newHarness()

		_, err := h.worker.Dispatch(ctx, &Event{Kind: KindPush})

		require.NoError(t, err)
		assert.Empty(t, h.reg.shown)
	})

	t.Run("invalid json", func(t *testing.T) {
		h := newHarness()

		_, err := h.worker.Dispatch(ctx, &Event{Kind: KindPush, Data: []byte("not json")})

		require.Error(t, err)
		assert.Empty(t, h.reg.shown)
	})
}

func TestWorker_NotificationClick(t *testing.T) {
	ctx := context.Background()
	n := notify.NewNotification(notify.Options{Title: "Drop!", URL: "/p/1"}, time.Now())

	tests := []struct {
		name   string
		action string
		opened []string
	}{
		{"view opens target", notify.ActionView, []string{"/p/1"}},
		{"default tap opens target", "", []string{"/p/1"}},
		{"dismiss only closes", notify.ActionDismiss, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			h := newHarness()
			shown := &shownNotification{n: n}

			// when
			_, err := h.worker.Dispatch(ctx, &Event{Kind: KindNotificationClick, Action: tt.action, Notification: shown})

			// then
			require.NoError(t, err)
			assert.True(t, shown.closed)
			assert.Equal(t, tt.opened, h.clients.opened)
		})
	}
}

func TestWorker_DispatchWaitsForAllWork(t *testing.T) {
	// given
	h := newHarness()
	var finished atomic.Int32
	h.worker.Handle(KindPush, func(_ context.Context, e *Event) {
		for i := 0; i < 3; i++ {
			e.WaitUntil(func(context.Context) error {
				time.Sleep(10 * time.Millisecond)
				finished.Add(1)
				return nil
			})
		}
	})

	// when
	_, err := h.worker.Dispatch(context.Background(), &Event{Kind: KindPush})

	// then
	require.NoError(t, err)
	assert.Equal(t, int32(3), finished.Load())
}

func TestWorker_UnknownKind(t *testing.T) {
	resp, err := newHarness().worker.Dispatch(context.Background(), &Event{Kind: "sync"})
	assert.NoError(t, err)
	assert.Nil(t, resp)
}
