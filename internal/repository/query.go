package repository

import (
	"fmt"
	"log/slog"
)

const (
	// DefaultHistoryLimit is the number of history rows returned when no limit is given.
	DefaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// HistoryQuery selects a page of one product's price history.
type HistoryQuery struct {
	ProductURL string

	Limit int

	Paginator *Paginator
}

// NewHistoryQuery creates a query for productURL with the default limit.
func NewHistoryQuery(productURL string) *HistoryQuery {
	return &HistoryQuery{
		ProductURL: productURL,
		Limit:      DefaultHistoryLimit,
	}
}

// WithLimit sets the limit, clamped to (0, maxHistoryLimit]. Non-positive values keep the current limit.
func (q *HistoryQuery) WithLimit(limit int) *HistoryQuery {
	if limit > 0 {
		q.Limit = min(maxHistoryLimit, limit)
	}
	return q
}

// ApplyPagination sets the limit and decodes the optional page token.
func (q *HistoryQuery) ApplyPagination(limit int, token string) error {
	q.WithLimit(limit)

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Error("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return fmt.Errorf("invalid page token: %w", ErrInvalidPaginationToken)
	}
	q.Paginator = paginator
	return nil
}

// EffectiveLimit returns the limit the store should apply.
func (q HistoryQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return min(maxHistoryLimit, q.Limit)
}
