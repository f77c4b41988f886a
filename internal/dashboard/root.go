// Package dashboard composes the product list, the selected product's history
// and the layout flags of one browser session.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/metrics"
	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
	"github.com/iyhunko/price-alerts-dashboard/internal/session"
	"golang.org/x/sync/errgroup"
)

// Config holds query tunables shared by every Root.
type Config struct {
	HistoryLimit int
	FetchTimeout time.Duration
}

// NotificationManager is the part of notify.Manager the dashboard drives on mount.
type NotificationManager interface {
	Initialize(ctx context.Context) bool
	RequestPermission(ctx context.Context) notify.Permission
}

// Root owns the dashboard state of one session. Queries run without holding
// the lock; their results are applied under it.
type Root struct {
	products repository.ProductReader
	history  repository.PriceHistoryReader
	conf     Config

	mu      sync.Mutex
	state   State
	mounted bool
}

// NewRoot creates an unmounted Root.
func NewRoot(products repository.ProductReader, history repository.PriceHistoryReader, conf Config) *Root {
	if conf.HistoryLimit <= 0 {
		conf.HistoryLimit = repository.DefaultHistoryLimit
	}
	return &Root{
		products: products,
		history:  history,
		conf:     conf,
	}
}

func (r *Root) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.conf.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.conf.FetchTimeout)
}

// Mount loads the product list, marks every entry loading, resolves each entry's
// latest point in parallel and merges the results by URL once all have resolved.
// Selection and the mobile menu are reset as on a fresh page load.
func (r *Root) Mount(ctx context.Context) State {
	products := r.listProducts(ctx)

	views := make([]model.ProductView, len(products))
	for i, p := range products {
		views[i] = model.ProductView{Product: p, Loading: true}
	}

	r.mu.Lock()
	r.mounted = true
	r.state.Products = views
	r.state.Selected = ""
	r.state.SelectionKey++
	r.state.History = nil
	r.state.Loading = false
	r.state.FetchFailed = false
	r.state.MobileMenuOpen = false
	r.mu.Unlock()

	byURL := r.resolveLatest(ctx, products)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.state.Products {
		if point, ok := byURL[r.state.Products[i].URL]; ok {
			r.state.Products[i].Latest = point
			r.state.Products[i].Loading = false
		}
	}
	return r.snapshotLocked()
}

// Products lists the tracked products with their latest points resolved. It
// does not touch the session state.
func (r *Root) Products(ctx context.Context) []model.ProductView {
	products := r.listProducts(ctx)
	byURL := r.resolveLatest(ctx, products)
	views := make([]model.ProductView, len(products))
	for i, p := range products {
		views[i] = model.ProductView{Product: p, Latest: byURL[p.URL]}
	}
	return views
}

// resolveLatest looks up the latest point of every product in parallel and
// returns them keyed by URL once all lookups have finished.
func (r *Root) resolveLatest(ctx context.Context, products []model.Product) map[string]*model.PricePoint {
	latest := make([]*model.PricePoint, len(products))
	var g errgroup.Group
	for i, p := range products {
		g.Go(func() error {
			latest[i] = r.latestPoint(ctx, p.URL)
			return nil
		})
	}
	_ = g.Wait()

	byURL := make(map[string]*model.PricePoint, len(products))
	for i, p := range products {
		byURL[p.URL] = latest[i]
	}
	return byURL
}

// Mounted reports whether Mount has run at least once.
func (r *Root) Mounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted
}

func (r *Root) listProducts(ctx context.Context) []model.Product {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	products, err := r.products.ListTracked(ctx)
	if err != nil {
		slog.Error("failed to fetch products", slog.Any("err", err))
		metrics.QueryFailures.WithLabelValues(metrics.QueryProducts).Inc()
		return nil
	}
	return products
}

func (r *Root) latestPoint(ctx context.Context, url string) *model.PricePoint {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	point, err := r.history.Latest(ctx, url)
	if err != nil {
		slog.Error("failed to fetch latest price", slog.String("product_url", url), slog.Any("err", err))
		metrics.QueryFailures.WithLabelValues(metrics.QueryLatest).Inc()
		return nil
	}
	return point
}

// SyncNotifications initializes the manager, asks for permission once and
// records whether notifications are enabled.
func (r *Root) SyncNotifications(ctx context.Context, manager NotificationManager) bool {
	enabled := false
	if manager.Initialize(ctx) {
		enabled = manager.RequestPermission(ctx) == notify.PermissionGranted
	}
	r.SetNotificationsEnabled(enabled)
	return enabled
}

// Resize records the viewport width. Dropping below MobileBreakpoint forces the
// sidebar collapsed; growing back does not expand it. Non-positive widths are ignored.
func (r *Root) Resize(width int) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width > 0 {
		r.state.ViewportWidth = width
		r.state.IsMobile = width < MobileBreakpoint
		if r.state.IsMobile {
			r.state.SidebarCollapsed = true
		} else {
			r.state.MobileMenuOpen = false
		}
	}
	return r.snapshotLocked()
}

// Select makes url the current selection and loads its history. A result is
// applied only if no newer selection was made while it was in flight.
func (r *Root) Select(ctx context.Context, url string) State {
	key := r.Begin(url)
	if url == "" {
		return r.Snapshot()
	}

	history, failed := r.fetchHistory(ctx, url)
	r.Complete(key, history, failed)
	return r.Snapshot()
}

// Begin switches the selection to url, clears the history and returns the
// selection key the following fetch belongs to.
func (r *Root) Begin(url string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SelectionKey++
	r.state.Selected = url
	r.state.History = nil
	r.state.FetchFailed = false
	r.state.Loading = url != ""
	if r.state.IsMobile {
		r.state.MobileMenuOpen = false
	}
	return r.state.SelectionKey
}

// Complete applies a history result issued for key. It returns false and
// discards the result when the selection has changed since.
func (r *Root) Complete(key uint64, history []model.PricePoint, failed bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key != r.state.SelectionKey {
		metrics.StaleHistoryDiscarded.Inc()
		slog.Debug("discarded stale price history", slog.Uint64("key", key), slog.Uint64("current", r.state.SelectionKey))
		return false
	}
	r.state.History = history
	r.state.FetchFailed = failed
	r.state.Loading = false
	return true
}

func (r *Root) fetchHistory(ctx context.Context, url string) ([]model.PricePoint, bool) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := repository.NewHistoryQuery(url).WithLimit(r.conf.HistoryLimit)
	history, err := r.history.History(ctx, *query)
	if err != nil {
		slog.Error("failed to fetch price history", slog.String("product_url", url), slog.Any("err", err))
		metrics.QueryFailures.WithLabelValues(metrics.QueryHistory).Inc()
		return nil, true
	}
	return history, false
}

// ToggleSidebar opens or closes the overlay menu on mobile and collapses or expands the sidebar otherwise.
func (r *Root) ToggleSidebar() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.IsMobile {
		r.state.MobileMenuOpen = !r.state.MobileMenuOpen
	} else {
		r.state.SidebarCollapsed = !r.state.SidebarCollapsed
	}
	return r.snapshotLocked()
}

// OpenMobileMenu shows the overlay menu.
func (r *Root) OpenMobileMenu() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.IsMobile {
		r.state.MobileMenuOpen = true
	}
	return r.snapshotLocked()
}

// CloseMobileMenu hides the overlay menu.
func (r *Root) CloseMobileMenu() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.MobileMenuOpen = false
	return r.snapshotLocked()
}

// SetNotificationsEnabled records the notification toggle.
func (r *Root) SetNotificationsEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.NotificationsEnabled = enabled
}

// SetLocation sets the time zone used for labels. nil means UTC.
func (r *Root) SetLocation(loc *time.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Location = loc
}

// Preferences returns the flags persisted across page loads.
func (r *Root) Preferences() session.Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return session.Preferences{
		SidebarCollapsed:     r.state.SidebarCollapsed,
		NotificationsEnabled: r.state.NotificationsEnabled,
	}
}

// ApplyPreferences restores persisted flags. Mobile layout keeps the sidebar collapsed.
func (r *Root) ApplyPreferences(prefs session.Preferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SidebarCollapsed = prefs.SidebarCollapsed || r.state.IsMobile
	r.state.NotificationsEnabled = prefs.NotificationsEnabled
}

// Snapshot returns a copy of the current state.
func (r *Root) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Root) snapshotLocked() State {
	s := r.state
	s.Products = append([]model.ProductView(nil), r.state.Products...)
	s.History = append([]model.PricePoint(nil), r.state.History...)
	return s
}
