package controller

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/price-alerts-dashboard/internal/dashboard"
	"github.com/iyhunko/price-alerts-dashboard/internal/http/middleware"
	"github.com/iyhunko/price-alerts-dashboard/internal/view"
)

const (
	// SelectionKeyHeader carries the selection key a panel was rendered for.
	SelectionKeyHeader = "X-Selection-Key"
	// PageIDHeader names the page a request comes from. Each rendered page
	// gets its own id, so tabs of one session keep separate dashboards.
	PageIDHeader = "X-Page-Id"

	htmlContentType = "text/html; charset=utf-8"
	pingTimeout     = 2 * time.Second
)

// Controller handles general HTTP requests.
type Controller struct {
	db *sql.DB
}

// New creates a new Controller. db may be nil, in which case Ping does not check it.
func New(db *sql.DB) *Controller {
	return &Controller{db: db}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	if con.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := con.db.PingContext(ctx); err != nil {
			slog.Error("database ping failed", slog.Any("err", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// sessions resolves the Root of the requesting session and renders its templates.
type sessions struct {
	registry *dashboard.Registry
	renderer *view.Renderer
	pushKey  string
}

// root returns the Root of the requesting page and the session id. Requests
// without a valid page id share the session's default page.
func (s sessions) root(c *gin.Context) (*dashboard.Root, string) {
	id := middleware.SessionID(c)
	pageID := c.GetHeader(PageIDHeader)
	if uuid.Validate(pageID) != nil {
		pageID = ""
	}
	return s.registry.Get(c.Request.Context(), id, pageID), id
}

// newPage creates the Root of a freshly rendered page.
func (s sessions) newPage(c *gin.Context) (*dashboard.Root, string) {
	pageID := uuid.NewString()
	return s.registry.Get(c.Request.Context(), middleware.SessionID(c), pageID), pageID
}

// mounted returns the page's Root, mounting it first when the page is new
// to this process.
func (s sessions) mounted(c *gin.Context) (*dashboard.Root, string) {
	root, id := s.root(c)
	if !root.Mounted() {
		root.Mount(c.Request.Context())
	}
	return root, id
}

func (s sessions) save(c *gin.Context, id string, root *dashboard.Root) {
	if err := s.registry.Save(c.Request.Context(), id, root); err != nil {
		slog.Error("failed to persist session", slog.String("session_id", id), slog.Any("err", err))
	}
}

func (s sessions) renderString(name string, state dashboard.State) (string, error) {
	return s.renderData(name, view.Data{State: state, PushKey: s.pushKey})
}

func (s sessions) renderData(name string, data view.Data) (string, error) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s sessions) render(c *gin.Context, name string, state dashboard.State) {
	s.write(c, name, view.Data{State: state, PushKey: s.pushKey})
}

func (s sessions) write(c *gin.Context, name string, data view.Data) {
	html, err := s.renderData(name, data)
	if err != nil {
		slog.Error("failed to render template", slog.String("template", name), slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(html))
}
