package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/types"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

// WatchHandler serves the watchlist endpoints
type WatchHandler struct {
	watches  *watchlist.Service
	rates    *rates.Service
	currency string
}

// NewWatchHandler creates a watchlist handler with the given services
func NewWatchHandler(watches *watchlist.Service, ratesService *rates.Service, currency string) *WatchHandler {
	return &WatchHandler{
		watches:  watches,
		rates:    ratesService,
		currency: currency,
	}
}

// ListWatchesResponse represents the watchlist response
type ListWatchesResponse struct {
	Watches []types.WatchEntry `json:"watches"`
	Total   int                `json:"total"`
}

// ListWatches returns all watch entries, newest first
// GET /api/watches
func (h *WatchHandler) ListWatches(c *gin.Context) {
	watches := h.watches.List()
	c.JSON(http.StatusOK, ListWatchesResponse{Watches: watches, Total: len(watches)})
}

// CreateWatchRequest represents the body for creating a watch
type CreateWatchRequest struct {
	Title       string   `json:"title" binding:"required"`
	Vendors     []string `json:"vendors" binding:"required,min=1"`
	TargetPrice *float64 `json:"targetPrice"`
	DiscountPct *float64 `json:"discountPct"`
	EmailOpt    bool     `json:"emailOpt"`
}

// CreateWatch adds a new watch entry
// POST /api/watches
func (h *WatchHandler) CreateWatch(c *gin.Context) {
	var req CreateWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := types.WatchEntry{
		ID:          watchlist.EntryID(req.Title, req.Vendors),
		Title:       req.Title,
		Vendors:     req.Vendors,
		TargetPrice: req.TargetPrice,
		DiscountPct: req.DiscountPct,
		EmailOpt:    req.EmailOpt,
	}

	if err := h.watches.Add(c.Request.Context(), entry); err != nil {
		if errors.Is(err, watchlist.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "watch already exists", "id": entry.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save watch"})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// UpdateWatchRequest represents the body for updating watch thresholds
type UpdateWatchRequest struct {
	TargetPrice *float64 `json:"targetPrice"`
	DiscountPct *float64 `json:"discountPct"`
}

// UpdateWatch changes the trigger thresholds of a watch
// PATCH /api/watches/:id
func (h *WatchHandler) UpdateWatch(c *gin.Context) {
	id := c.Param("id")

	var req UpdateWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.watches.UpdateThresholds(c.Request.Context(), id, req.TargetPrice, req.DiscountPct); err != nil {
		if errors.Is(err, watchlist.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update watch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DeleteWatch removes a watch entry
// DELETE /api/watches/:id
func (h *WatchHandler) DeleteWatch(c *gin.Context) {
	id := c.Param("id")

	if err := h.watches.Remove(c.Request.Context(), id); err != nil {
		if errors.Is(err, watchlist.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete watch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ResetBaseline clears a watch's discount baseline so that the next
// matching offer re-establishes it
// POST /api/watches/:id/reset-baseline
func (h *WatchHandler) ResetBaseline(c *gin.Context) {
	id := c.Param("id")

	if err := h.watches.ResetBaseline(c.Request.Context(), id); err != nil {
		if errors.Is(err, watchlist.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset baseline"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// RefreshWatchesRequest represents the body for a manual watch refresh
type RefreshWatchesRequest struct {
	Offers   []types.Offer `json:"offers" binding:"required"`
	Currency string        `json:"currency"`
}

// RefreshWatchesResponse represents the refresh result
type RefreshWatchesResponse struct {
	Notifications []watchlist.Notification `json:"notifications"`
}

// RefreshWatches evaluates every watch against the supplied offers and
// returns newly triggered notifications
// POST /api/watches/refresh
func (h *WatchHandler) RefreshWatches(c *gin.Context) {
	var req RefreshWatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currency := h.currency
	if req.Currency != "" {
		currency = req.Currency
	}

	table := h.rates.Table(c.Request.Context())
	price := watchlist.PriceFunc(rates.PriceIn(currency, table))

	notifications, err := h.watches.Refresh(c.Request.Context(), req.Offers, price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh watches"})
		return
	}

	if notifications == nil {
		notifications = []watchlist.Notification{}
	}
	c.JSON(http.StatusOK, RefreshWatchesResponse{Notifications: notifications})
}
