package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pricescanner/aggregator/internal/vendors"
)

// ListVendorsResponse represents the vendor roster response
type ListVendorsResponse struct {
	Vendors []vendors.Info `json:"vendors"`
}

// ListVendors returns all supported marketplaces in display order
// GET /api/vendors
func ListVendors(c *gin.Context) {
	infos := make([]vendors.Info, 0, len(vendors.Slugs))
	for _, slug := range vendors.Slugs {
		infos = append(infos, vendors.Infos[slug])
	}
	c.JSON(http.StatusOK, ListVendorsResponse{Vendors: infos})
}
