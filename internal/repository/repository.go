package repository

import (
	"context"
	"errors"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("resource not found")
)

// ProductReader lists tracked products.
type ProductReader interface {
	// ListTracked returns active, non-deleted products sorted by URL.
	ListTracked(ctx context.Context) ([]model.Product, error)
}

// PriceHistoryReader reads the append-only price history of a product.
type PriceHistoryReader interface {
	// Latest returns the most recent point for productURL, or nil when none exists yet.
	Latest(ctx context.Context, productURL string) (*model.PricePoint, error)
	// History returns points newest-first, capped at query.Limit.
	History(ctx context.Context, query HistoryQuery) ([]model.PricePoint, error)
}

// SubscriptionRepository stores push subscriptions registered by dashboard sessions.
type SubscriptionRepository interface {
	Save(ctx context.Context, sub *model.PushSubscription) (*model.PushSubscription, error)
	List(ctx context.Context) ([]model.PushSubscription, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}
