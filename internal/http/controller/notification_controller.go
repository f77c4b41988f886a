package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/price-alerts-dashboard/internal/dashboard"
	"github.com/iyhunko/price-alerts-dashboard/internal/http/middleware"
	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
	"github.com/iyhunko/price-alerts-dashboard/internal/view"
)

// NotificationController drives the notification manager of a session from
// what its browser reports.
type NotificationController struct {
	sessions
	subs        repository.SubscriptionRepository
	broadcaster *notify.Broadcaster
}

// NewNotificationController creates a new NotificationController. broadcaster is nil when push is not configured.
func NewNotificationController(registry *dashboard.Registry, renderer *view.Renderer, subs repository.SubscriptionRepository, broadcaster *notify.Broadcaster, pushKey string) *NotificationController {
	return &NotificationController{
		sessions:    sessions{registry: registry, renderer: renderer, pushKey: pushKey},
		subs:        subs,
		broadcaster: broadcaster,
	}
}

// NotificationResponse tells the client the resulting toggle state. HTML is
// the re-rendered layout when the toggle changed, Alert is text to show once,
// and Notifications are the ones the page must display itself.
type NotificationResponse struct {
	Enabled       bool                  `json:"enabled"`
	HTML          string                `json:"html,omitempty"`
	Alert         string                `json:"alert,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// PushKey handles GET /api/push/key.
func (nc *NotificationController) PushKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"public_key": nc.pushKey,
		"enabled":    nc.pushKey != "",
	})
}

func (nc *NotificationController) manager(c *gin.Context, report notify.ClientReport) (*notify.Manager, *notify.ClientPlatform) {
	platform := notify.NewClientPlatform(report, middleware.SessionID(c), nc.subs, nc.broadcaster)
	return notify.NewManager(platform, nc.pushKey), platform
}

// Sync handles POST /api/notifications/sync, sent by the page once its
// background script is ready.
func (nc *NotificationController) Sync(c *gin.Context) {
	var report notify.ClientReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	root, id := nc.root(c)
	manager, _ := nc.manager(c, report)
	defer manager.Close()

	before := root.Snapshot().NotificationsEnabled
	enabled := root.SyncNotifications(ctx, manager)
	if enabled && report.Subscription != nil {
		manager.SubscribeToPush(ctx)
	}
	nc.save(c, id, root)
	nc.respond(c, root, before, NotificationResponse{})
}

// Enable handles POST /api/notifications/enable, sent after the user switched
// notifications on and the browser answered the permission prompt.
func (nc *NotificationController) Enable(c *gin.Context) {
	var report notify.ClientReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	root, id := nc.root(c)
	manager, platform := nc.manager(c, report)
	defer manager.Close()

	before := root.Snapshot().NotificationsEnabled
	manager.Initialize(ctx)
	if manager.RequestPermission(ctx) != notify.PermissionGranted {
		root.SetNotificationsEnabled(false)
		nc.save(c, id, root)
		nc.respond(c, root, before, NotificationResponse{Alert: notify.PermissionRequiredMessage})
		return
	}

	root.SetNotificationsEnabled(true)
	nc.save(c, id, root)
	if report.Subscription != nil {
		manager.SubscribeToPush(ctx)
	}
	if err := manager.ShowNotification(ctx, notify.EnabledNotification()); err != nil {
		slog.Error("failed to show confirmation notification", slog.Any("err", err))
	}
	nc.respond(c, root, before, NotificationResponse{Notifications: platform.Registration().Pending()})
}

// DisableRequest represents the request body for switching notifications off.
type DisableRequest struct {
	Endpoint string `json:"endpoint"`
}

// Disable handles POST /api/notifications/disable. The browser's push
// subscription, when given, is forgotten.
func (nc *NotificationController) Disable(c *gin.Context) {
	var req DisableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	root, id := nc.root(c)
	before := root.Snapshot().NotificationsEnabled
	root.SetNotificationsEnabled(false)
	nc.save(c, id, root)

	if req.Endpoint != "" && nc.subs != nil {
		err := nc.subs.DeleteByEndpoint(c.Request.Context(), req.Endpoint)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to delete push subscription", slog.Any("err", err))
		}
	}
	nc.respond(c, root, before, NotificationResponse{})
}

// Test handles POST /api/notifications/test.
func (nc *NotificationController) Test(c *gin.Context) {
	var report notify.ClientReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	root, _ := nc.root(c)
	manager, platform := nc.manager(c, report)
	defer manager.Close()

	manager.Initialize(ctx)
	if err := manager.ShowNotification(ctx, notify.PreviewNotification()); err != nil {
		slog.Error("failed to show test notification", slog.Any("err", err))
	}
	before := root.Snapshot().NotificationsEnabled
	nc.respond(c, root, before, NotificationResponse{Notifications: platform.Registration().Pending()})
}

func (nc *NotificationController) respond(c *gin.Context, root *dashboard.Root, before bool, resp NotificationResponse) {
	state := root.Snapshot()
	resp.Enabled = state.NotificationsEnabled
	if before != resp.Enabled {
		html, err := nc.renderString(view.LayoutTemplate, state)
		if err != nil {
			slog.Error("failed to render layout", slog.Any("err", err))
		}
		resp.HTML = html
	}
	c.JSON(http.StatusOK, resp)
}
