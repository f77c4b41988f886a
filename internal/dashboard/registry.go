package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"
	"github.com/iyhunko/price-alerts-dashboard/internal/session"
)

// DefaultRegistrySize bounds the number of live pages kept in memory.
const DefaultRegistrySize = 5000

// Registry maps pages to their Root. Every page of a session has its own
// selection and layout; the session's preferences are shared through the
// store. Least recently used pages are evicted.
type Registry struct {
	roots   *lru.Cache
	store   session.Store
	newRoot func() *Root
}

// NewRegistry creates a registry holding at most size pages.
func NewRegistry(size int, store session.Store, newRoot func() *Root) (*Registry, error) {
	roots, err := lru.NewWithEvict(size, func(key, _ interface{}) {
		slog.Debug("dashboard page evicted", slog.Any("page", key))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}
	return &Registry{
		roots:   roots,
		store:   store,
		newRoot: newRoot,
	}, nil
}

func pageKey(sessionID, pageID string) string {
	return sessionID + "/" + pageID
}

// Get returns the Root of page pageID in session sessionID, creating it with
// the session's stored preferences when absent. An empty pageID addresses
// the session's default page.
func (r *Registry) Get(ctx context.Context, sessionID, pageID string) *Root {
	key := pageKey(sessionID, pageID)
	if v, ok := r.roots.Get(key); ok {
		return v.(*Root)
	}

	// The store may be remote; other pages are served while it loads
	prefs, err := session.LoadOrDefault(ctx, r.store, sessionID)
	if err != nil {
		slog.Error("failed to load session preferences", slog.String("session_id", sessionID), slog.Any("err", err))
	}
	root := r.newRoot()
	root.ApplyPreferences(prefs)

	if prev, ok, _ := r.roots.PeekOrAdd(key, root); ok {
		return prev.(*Root)
	}
	return root
}

// Save persists the preferences of root under sessionID.
func (r *Registry) Save(ctx context.Context, sessionID string, root *Root) error {
	if err := r.store.Save(ctx, sessionID, root.Preferences()); err != nil {
		return fmt.Errorf("failed to save session preferences: %w", err)
	}
	return nil
}
