package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/price-alerts-dashboard/internal/dashboard"
	"github.com/iyhunko/price-alerts-dashboard/internal/metrics"
	"github.com/iyhunko/price-alerts-dashboard/internal/model"
	"github.com/iyhunko/price-alerts-dashboard/internal/repository"
)

// ProductController handles the JSON product API.
type ProductController struct {
	catalog      *dashboard.Root
	history      repository.PriceHistoryReader
	fetchTimeout time.Duration
}

// NewProductController creates a new ProductController. Product listings are
// resolved by an unmounted Root, so they follow the same query rules as the page.
func NewProductController(products repository.ProductReader, history repository.PriceHistoryReader, conf dashboard.Config) *ProductController {
	return &ProductController{
		catalog:      dashboard.NewRoot(products, history, conf),
		history:      history,
		fetchTimeout: conf.FetchTimeout,
	}
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products []model.ProductView `json:"products"`
}

// ListProducts handles the HTTP GET request for listing tracked products with their latest price.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products := pc.catalog.Products(c.Request.Context())
	if products == nil {
		products = []model.ProductView{}
	}
	c.JSON(http.StatusOK, ListProductsResponse{Products: products})
}

// HistoryRequest represents the query parameters for reading price history.
type HistoryRequest struct {
	URL   string `form:"url" binding:"required"`
	Limit int    `form:"limit"`
	Token string `form:"token"`
}

// HistoryResponse represents one newest-first page of price history.
type HistoryResponse struct {
	History       []model.PricePoint `json:"history"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

// ListHistory handles the HTTP GET request for a product's price history with pagination.
func (pc *ProductController) ListHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewHistoryQuery(req.URL)
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if pc.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pc.fetchTimeout)
		defer cancel()
	}

	history, err := pc.history.History(ctx, *query)
	if err != nil {
		slog.Error("failed to fetch price history", slog.String("product_url", req.URL), slog.Any("err", err))
		metrics.QueryFailures.WithLabelValues(metrics.QueryHistory).Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{"error": "failed to fetch price history"})
		return
	}

	response := HistoryResponse{History: history}
	if response.History == nil {
		response.History = []model.PricePoint{}
	}

	// A full page may have more rows behind it
	if len(history) > 0 && len(history) == query.EffectiveLimit() {
		last := history[len(history)-1]
		response.NextPageToken = repository.Paginator{
			LastID:        last.ID,
			LastTimestamp: last.Timestamp,
		}.Encode()
	}

	c.JSON(http.StatusOK, response)
}
