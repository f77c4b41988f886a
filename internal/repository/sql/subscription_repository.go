package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

const subscriptionColumns = `id, session_id, endpoint, p256dh, auth, created_at`

// SubscriptionRepository implements repository.SubscriptionRepository over push_subscriptions.
type SubscriptionRepository struct {
	db dbExecutor
}

// NewSubscriptionRepository creates a new SubscriptionRepository instance.
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)

// Save inserts a subscription, or re-binds an existing endpoint to the new session and keys.
func (r *SubscriptionRepository) Save(ctx context.Context, sub *model.PushSubscription) (*model.PushSubscription, error) {
	if sub.Endpoint == "" {
		return nil, errors.New("subscription endpoint is required")
	}
	sub.InitMeta()

	query := `INSERT INTO push_subscriptions (` + subscriptionColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (endpoint) DO UPDATE
	          SET session_id = EXCLUDED.session_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
	          RETURNING id, created_at`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, sub.ID, sub.SessionID, sub.Endpoint, sub.P256dh, sub.Auth, sub.CreatedAt).
		Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert push subscription: %w", err)
	}

	return sub, nil
}

// List retrieves every stored subscription, oldest first.
func (r *SubscriptionRepository) List(ctx context.Context) ([]model.PushSubscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM push_subscriptions ORDER BY created_at ASC`)
}

// ListBySession retrieves the subscriptions registered by one dashboard session.
func (r *SubscriptionRepository) ListBySession(ctx context.Context, sessionID string) ([]model.PushSubscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM push_subscriptions WHERE session_id = $1 ORDER BY created_at ASC`, sessionID)
}

func (r *SubscriptionRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.PushSubscription, error) {
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.SessionID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subs, nil
}

// DeleteByEndpoint removes a subscription the push service reported as gone.
func (r *SubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE endpoint = $1`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("push subscription: %w", repository.ErrNotFound)
	}

	return nil
}
