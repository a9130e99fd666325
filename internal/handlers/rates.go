package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/types"
)

// RatesHandler serves the exchange-rate endpoints
type RatesHandler struct {
	rates *rates.Service
}

// NewRatesHandler creates a rates handler backed by the given service
func NewRatesHandler(ratesService *rates.Service) *RatesHandler {
	return &RatesHandler{rates: ratesService}
}

// RatesResponse represents the current rate table
type RatesResponse struct {
	Table *types.RateTable `json:"table"`
}

// GetRates returns the rate table currently used for conversion
// GET /api/rates
func (h *RatesHandler) GetRates(c *gin.Context) {
	c.JSON(http.StatusOK, RatesResponse{Table: h.rates.Table(c.Request.Context())})
}

// RefreshRates forces a fetch of a fresh rate table
// POST /api/rates/refresh
func (h *RatesHandler) RefreshRates(c *gin.Context) {
	if err := h.rates.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "rate refresh failed"})
		return
	}
	c.JSON(http.StatusOK, RatesResponse{Table: h.rates.Table(c.Request.Context())})
}
