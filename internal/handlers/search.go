package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricescanner/aggregator/internal/matching"
	"github.com/pricescanner/aggregator/internal/pipeline"
	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/search"
	"github.com/pricescanner/aggregator/internal/types"
	"github.com/pricescanner/aggregator/internal/vendors"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

// SearchHandler serves the aggregated search endpoint
type SearchHandler struct {
	coordinator *search.Coordinator
	rates       *rates.Service
	watches     *watchlist.Service
	signer      matching.Signer
	country     string
	currency    string
	logger      zerolog.Logger
}

// NewSearchHandler creates a search handler with the given services
func NewSearchHandler(coordinator *search.Coordinator, ratesService *rates.Service, watches *watchlist.Service, country, currency string) *SearchHandler {
	return &SearchHandler{
		coordinator: coordinator,
		rates:       ratesService,
		watches:     watches,
		signer:      matching.HeuristicSigner{},
		country:     country,
		currency:    currency,
		logger:      log.With().Str("component", "search-handler").Logger(),
	}
}

// SearchRequest represents query parameters for the search endpoint
type SearchRequest struct {
	Query       string   `form:"q" binding:"required"`
	Vendors     string   `form:"vendors"`
	Currency    string   `form:"currency"`
	Country     string   `form:"country"`
	Sort        string   `form:"sort"`
	MinPrice    *float64 `form:"minPrice"`
	MaxPrice    *float64 `form:"maxPrice"`
	MaxShipDays *int     `form:"maxShipDays" binding:"omitempty,min=0"`
	Cluster     bool     `form:"cluster"`
	Page        int      `form:"page" binding:"omitempty,min=1"`
	PageSize    int      `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// SearchResponse represents the search endpoint response
type SearchResponse struct {
	Query         string                   `json:"query"`
	Currency      string                   `json:"currency"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"pageSize"`
	Total         int                      `json:"total"`
	Results       []types.Offer            `json:"results,omitempty"`
	Groups        []types.ProductGroup     `json:"groups,omitempty"`
	Notifications []watchlist.Notification `json:"notifications,omitempty"`
}

// Search runs a multi-vendor search and returns the assembled results
// GET /api/search?q=wireless+mouse&vendors=amazon,ebay&currency=EUR&cluster=true
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.buildSession(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	pools := h.coordinator.Search(ctx, session)
	table := h.rates.Table(ctx)

	response := SearchResponse{
		Query:    session.Query,
		Currency: session.Currency,
		Page:     session.Page,
		PageSize: session.PageSize,
	}

	price := watchlist.PriceFunc(rates.PriceIn(session.Currency, table))

	if session.Cluster {
		groups := pipeline.BuildGroups(session, pools, table, h.signer)
		response.Total = len(groups)
		response.Groups = paginate(groups, session.Page, session.PageSize)
		response.Notifications = h.refreshWatches(c, flatten(groups), price)
	} else {
		results := pipeline.BuildResults(session, pools, table)
		response.Total = len(results)
		response.Results = paginate(results, session.Page, session.PageSize)
		response.Notifications = h.refreshWatches(c, results, price)
	}

	c.JSON(http.StatusOK, response)
}

// buildSession validates the request and assembles the per-request state
func (h *SearchHandler) buildSession(req SearchRequest) (types.Session, error) {
	session := types.Session{
		Query:       strings.TrimSpace(req.Query),
		Currency:    h.currency,
		Country:     h.country,
		Sort:        types.SortPriceAsc,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		MaxShipDays: req.MaxShipDays,
		Cluster:     req.Cluster,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	if req.Currency != "" {
		session.Currency = strings.ToUpper(req.Currency)
	}
	if req.Country != "" {
		session.Country = strings.ToUpper(req.Country)
	}

	switch req.Sort {
	case "", string(types.SortPriceAsc):
		session.Sort = types.SortPriceAsc
	case string(types.SortPriceDesc):
		session.Sort = types.SortPriceDesc
	case string(types.SortRating):
		session.Sort = types.SortRating
	default:
		return session, &invalidParamError{param: "sort", value: req.Sort}
	}

	if req.Vendors == "" {
		session.Vendors = vendors.DefaultEnabled()
	} else {
		for _, raw := range strings.Split(req.Vendors, ",") {
			slug := strings.ToLower(strings.TrimSpace(raw))
			if slug == "" {
				continue
			}
			if !vendors.IsValid(slug) {
				return session, &invalidParamError{param: "vendors", value: raw}
			}
			session.Vendors = append(session.Vendors, slug)
		}
	}

	if session.Page == 0 {
		session.Page = 1
	}
	if session.PageSize == 0 {
		session.PageSize = 20
	}

	return session, nil
}

// refreshWatches evaluates the watchlist against fresh results and
// returns any newly triggered notifications. Watchlist failures never
// fail the search.
func (h *SearchHandler) refreshWatches(c *gin.Context, offers []types.Offer, price watchlist.PriceFunc) []watchlist.Notification {
	if h.watches == nil {
		return nil
	}

	notifications, err := h.watches.Refresh(c.Request.Context(), offers, price)
	if err != nil {
		h.logger.Error().Err(err).Msg("watchlist refresh failed")
		return nil
	}
	return notifications
}

// flatten concatenates group members back into one offer list
func flatten(groups []types.ProductGroup) []types.Offer {
	size := 0
	for _, g := range groups {
		size += len(g.Offers)
	}
	offers := make([]types.Offer, 0, size)
	for _, g := range groups {
		offers = append(offers, g.Offers...)
	}
	return offers
}

// paginate slices one page out of the full item list
func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type invalidParamError struct {
	param string
	value string
}

func (e *invalidParamError) Error() string {
	return "invalid " + e.param + ": " + e.value
}
