package offline

import (
	"context"
	"errors"
	"sync"

	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
)

var errOffline = errors.New("network request rejected")

type memCache struct {
	added []string
}

func (c *memCache) AddAll(_ context.Context, urls []string) error {
	c.added = append(c.added, urls...)
	return nil
}

type memCaches struct {
	mu      sync.Mutex
	caches  map[string]*memCache
	entries map[string]*Response
	deleted []string
}

func newMemCaches(names ...string) *memCaches {
	m := &memCaches{caches: map[string]*memCache{}, entries: map[string]*Response{}}
	for _, n := range names {
		m.caches[n] = &memCache{}
	}
	return m
}

func (m *memCaches) Open(_ context.Context, name string) (Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.caches[name]
	if !ok {
		c = &memCache{}
		m.caches[name] = c
	}
	return c, nil
}

func (m *memCaches) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for n := range m.caches {
		names = append(names, n)
	}
	return names, nil
}

func (m *memCaches) Delete(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.caches[name]
	delete(m.caches, name)
	m.deleted = append(m.deleted, name)
	return ok, nil
}

func (m *memCaches) Match(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[req.URL], nil
}

type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]*Response
	reject    bool
	calls     []string
}

func (f *stubFetcher) Fetch(_ context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.URL)
	if f.reject {
		return nil, errOffline
	}
	if resp, ok := f.responses[req.URL]; ok {
		return resp, nil
	}
	return &Response{Status: 404}, nil
}

type stubClients struct {
	claimed bool
	opened  []string
}

func (c *stubClients) Claim(context.Context) error {
	c.claimed = true
	return nil
}

func (c *stubClients) OpenWindow(_ context.Context, url string) error {
	c.opened = append(c.opened, url)
	return nil
}

type stubRegistration struct {
	skipped bool
	shown   []notify.Notification
}

func (r *stubRegistration) SkipWaiting(context.Context) error {
	r.skipped = true
	return nil
}

func (r *stubRegistration) ShowNotification(_ context.Context, n notify.Notification) error {
	r.shown = append(r.shown, n)
	return nil
}

type shownNotification struct {
	n      notify.Notification
	closed bool
}

func (s *shownNotification) Notification() notify.Notification { return s.n }

func (s *shownNotification) Close() { s.closed = true }
