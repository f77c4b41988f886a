package controller

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/price-alerts-dashboard/internal/chart"
	"github.com/iyhunko/price-alerts-dashboard/internal/dashboard"
	"github.com/iyhunko/price-alerts-dashboard/internal/view"
)

// DashboardController serves the page and the partials the client swaps in.
type DashboardController struct {
	sessions
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(registry *dashboard.Registry, renderer *view.Renderer, pushKey string) *DashboardController {
	return &DashboardController{
		sessions: sessions{registry: registry, renderer: renderer, pushKey: pushKey},
	}
}

// Index handles GET / by mounting a dashboard for a new page. A product query
// parameter selects that product before rendering.
func (dc *DashboardController) Index(c *gin.Context) {
	root, pageID := dc.newPage(c)
	ctx := c.Request.Context()

	state := root.Mount(ctx)
	if product := c.Query("product"); product != "" {
		state = root.Select(ctx, product)
	}
	dc.write(c, view.PageTemplate, view.Data{State: state, PushKey: dc.pushKey, PageID: pageID})
}

// SelectRequest represents the request body for selecting a product.
type SelectRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}

// Select handles POST /ui/select. The response carries the selection key in
// SelectionKeyHeader so the client can drop responses for older selections.
func (dc *DashboardController) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	root, _ := dc.mounted(c)
	state := root.Select(c.Request.Context(), req.URL)
	c.Header(SelectionKeyHeader, strconv.FormatUint(state.SelectionKey, 10))
	dc.render(c, view.LayoutTemplate, state)
}

// ViewportRequest represents the request body for reporting the viewport.
type ViewportRequest struct {
	Width    int    `json:"width"`
	Timezone string `json:"timezone"`
}

// ViewportResponse represents the layout after a viewport report. HTML is only
// set when the rendered layout changed.
type ViewportResponse struct {
	Mobile           bool   `json:"mobile"`
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
	MobileMenuOpen   bool   `json:"mobile_menu_open"`
	HTML             string `json:"html,omitempty"`
}

// Viewport handles POST /ui/viewport.
func (dc *DashboardController) Viewport(c *gin.Context) {
	var req ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	root, id := dc.mounted(c)
	before := root.Snapshot()
	if req.Timezone != "" {
		loc, err := time.LoadLocation(req.Timezone)
		if err != nil {
			slog.Warn("ignoring unknown time zone", slog.String("timezone", req.Timezone))
		} else {
			root.SetLocation(loc)
		}
	}
	after := root.Resize(req.Width)
	if before.SidebarCollapsed != after.SidebarCollapsed {
		dc.save(c, id, root)
	}

	resp := ViewportResponse{
		Mobile:           after.IsMobile,
		SidebarCollapsed: after.SidebarCollapsed,
		MobileMenuOpen:   after.MobileMenuOpen,
	}
	if layoutChanged(before, after) {
		html, err := dc.renderString(view.LayoutTemplate, after)
		if err != nil {
			slog.Error("failed to render layout", slog.Any("err", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render layout"})
			return
		}
		resp.HTML = html
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleSidebar handles POST /ui/sidebar/toggle.
func (dc *DashboardController) ToggleSidebar(c *gin.Context) {
	root, id := dc.mounted(c)
	state := root.ToggleSidebar()
	dc.save(c, id, root)
	dc.render(c, view.LayoutTemplate, state)
}

// OpenMenu handles POST /ui/menu/open.
func (dc *DashboardController) OpenMenu(c *gin.Context) {
	root, _ := dc.mounted(c)
	dc.render(c, view.LayoutTemplate, root.OpenMobileMenu())
}

// CloseMenu handles POST /ui/menu/close.
func (dc *DashboardController) CloseMenu(c *gin.Context) {
	root, _ := dc.mounted(c)
	dc.render(c, view.LayoutTemplate, root.CloseMobileMenu())
}

func layoutChanged(before, after dashboard.State) bool {
	compact := func(s dashboard.State) bool {
		return chart.Options{ViewportWidth: s.ViewportWidth}.Compact()
	}
	return before.IsMobile != after.IsMobile ||
		before.SidebarCollapsed != after.SidebarCollapsed ||
		before.MobileMenuOpen != after.MobileMenuOpen ||
		compact(before) != compact(after) ||
		before.Location.String() != after.Location.String()
}
