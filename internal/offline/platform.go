package offline

import (
	"context"

	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
)

// Request is an intercepted network request.
type Request struct {
	Method string
	URL    string
}

// Response is a network or cached response.
type Response struct {
	Status    int
	Body      []byte
	FromCache bool
}

// Cache is one named cache.
type Cache interface {
	AddAll(ctx context.Context, urls []string) error
}

// CacheStorage holds the named caches of the origin.
type CacheStorage interface {
	Open(ctx context.Context, name string) (Cache, error)
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
	// Match looks req up in every cache; a miss returns nil, nil.
	Match(ctx context.Context, req Request) (*Response, error)
}

// Fetcher performs network requests. It fails only when the request itself
// rejects; error statuses are responses.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Clients are the pages controlled by the script.
type Clients interface {
	Claim(ctx context.Context) error
	OpenWindow(ctx context.Context, url string) error
}

// Registration is the script's own registration.
type Registration interface {
	SkipWaiting(ctx context.Context) error
	ShowNotification(ctx context.Context, n notify.Notification) error
}

// DisplayedNotification is a notification the platform is currently showing.
type DisplayedNotification interface {
	Notification() notify.Notification
	Close()
}
