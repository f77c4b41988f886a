package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/price-alerts-dashboard/internal/http/controller"
	"github.com/iyhunko/price-alerts-dashboard/internal/http/middleware"
	"github.com/iyhunko/price-alerts-dashboard/internal/webapp"
)

// Controllers groups the handlers mounted by InitRouter.
type Controllers struct {
	General      *controller.Controller
	Dashboard    *controller.DashboardController
	Products     *controller.ProductController
	Notification *controller.NotificationController
	Assets       *controller.AssetController
}

// InitRouter registers middleware and routes on server.
func InitRouter(server *gin.Engine, sessionTTL time.Duration, ctrs Controllers) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(middleware.Logger())

	server.GET("/ping", ctrs.General.Ping)

	// Background script, manifest and icons are session-free
	server.GET("/sw.js", ctrs.Assets.ServiceWorker)
	server.GET("/manifest.json", ctrs.Assets.Manifest)
	server.GET("/icons/:file", ctrs.Assets.Icon)
	server.StaticFS("/static", http.FS(webapp.Static()))

	session := middleware.Session(sessionTTL)

	server.GET("/", session, ctrs.Dashboard.Index)
	ui := server.Group("/ui", session)
	{
		ui.POST("/select", ctrs.Dashboard.Select)
		ui.POST("/viewport", ctrs.Dashboard.Viewport)
		ui.POST("/sidebar/toggle", ctrs.Dashboard.ToggleSidebar)
		ui.POST("/menu/open", ctrs.Dashboard.OpenMenu)
		ui.POST("/menu/close", ctrs.Dashboard.CloseMenu)
	}

	api := server.Group("/api", middleware.CORS())
	{
		// Preflight requests are answered by CORS before this handler runs
		api.OPTIONS("/*path", func(*gin.Context) {})

		api.GET("/products", ctrs.Products.ListProducts)
		api.GET("/products/history", ctrs.Products.ListHistory)
		api.GET("/push/key", ctrs.Notification.PushKey)

		notifications := api.Group("/notifications", session)
		{
			notifications.POST("/sync", ctrs.Notification.Sync)
			notifications.POST("/enable", ctrs.Notification.Enable)
			notifications.POST("/disable", ctrs.Notification.Disable)
			notifications.POST("/test", ctrs.Notification.Test)
		}
	}

	return server
}
