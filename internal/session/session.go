// Package session stores per-session dashboard preferences.
package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no preferences are stored for a session.
	ErrNotFound = errors.New("session not found")
)

// Preferences are the layout and notification choices that outlive a page load.
type Preferences struct {
	SidebarCollapsed     bool `json:"sidebar_collapsed"`
	NotificationsEnabled bool `json:"notifications_enabled"`
}

// Store loads and saves Preferences by session id.
type Store interface {
	Load(ctx context.Context, id string) (Preferences, error)
	Save(ctx context.Context, id string, prefs Preferences) error
	Delete(ctx context.Context, id string) error
}

// LoadOrDefault returns the stored preferences, or the zero value when none exist.
// Other store errors are returned with the zero value.
func LoadOrDefault(ctx context.Context, store Store, id string) (Preferences, error) {
	prefs, err := store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Preferences{}, nil
	}
	return prefs, err
}
