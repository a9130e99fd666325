// Package search coordinates concurrent multi-vendor queries: fan-out
// across enabled vendors, per-vendor result caching guarded against
// stale in-flight responses, and debounced triggering for interactive
// callers.
package search

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pricescanner/aggregator/internal/normalize"
	"github.com/pricescanner/aggregator/internal/types"
	"github.com/pricescanner/aggregator/internal/vendors"
)

// Config holds coordinator settings
type Config struct {
	PageSize  int
	EnrichTop int
}

// DefaultConfig returns the default coordinator settings
func DefaultConfig() Config {
	return Config{
		PageSize:  20,
		EnrichTop: 3,
	}
}

// vendorSlot is one vendor's cache cell. gen increments on every new
// request for the vendor; a response only commits if its generation is
// still current, so a slow stale response can never overwrite a newer
// fast one.
type vendorSlot struct {
	gen    uint64
	offers []types.Offer
}

// Coordinator fans a query out to all enabled vendors, normalizes and
// enriches what comes back, and maintains the per-vendor offer cache.
type Coordinator struct {
	client vendors.SearchClient
	config Config
	mu     sync.Mutex
	slots  map[string]*vendorSlot
	logger zerolog.Logger
}

// NewCoordinator creates a search coordinator
func NewCoordinator(client vendors.SearchClient, config Config) *Coordinator {
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}
	return &Coordinator{
		client: client,
		config: config,
		slots:  make(map[string]*vendorSlot),
		logger: log.With().Str("component", "search").Logger(),
	}
}

// Search queries every enabled vendor concurrently and waits for all of
// them to settle. Each vendor is independently fallible: a failure
// contributes an empty pool and never aborts the batch. The returned
// map holds the current cache snapshot for the session's vendors.
func (c *Coordinator) Search(ctx context.Context, session types.Session) map[string][]types.Offer {
	page := session.Page
	if page <= 0 {
		page = 1
	}
	pageSize := session.PageSize
	if pageSize <= 0 {
		pageSize = c.config.PageSize
	}

	generations := make(map[string]uint64, len(session.Vendors))
	c.mu.Lock()
	for _, v := range session.Vendors {
		slot, ok := c.slots[v]
		if !ok {
			slot = &vendorSlot{}
			c.slots[v] = slot
		}
		slot.gen++
		generations[v] = slot.gen
	}
	c.mu.Unlock()

	g := new(errgroup.Group)
	for _, vendor := range session.Vendors {
		vendor := vendor
		gen := generations[vendor]

		g.Go(func() error {
			start := time.Now()
			raws, err := c.client.Search(ctx, vendor, session.Query, page, pageSize)
			searchDuration.WithLabelValues(vendor).Observe(time.Since(start).Seconds())
			if err != nil {
				searchFailures.WithLabelValues(vendor).Inc()
				c.logger.Warn().Err(err).Str("vendor", vendor).Msg("Vendor search failed")
				raws = nil
			}

			offers := make([]types.Offer, 0, len(raws))
			for _, raw := range raws {
				offers = append(offers, normalize.Offer(raw, vendor, session.Country))
			}

			c.enrichTop(ctx, vendor, offers)
			c.commit(vendor, gen, offers)
			return nil
		})
	}
	g.Wait()

	pools := make(map[string][]types.Offer, len(session.Vendors))
	c.mu.Lock()
	for _, v := range session.Vendors {
		if slot, ok := c.slots[v]; ok {
			pools[v] = slot.offers
		}
	}
	c.mu.Unlock()
	return pools
}

// enrichTop refreshes price details for the first few offers of a
// vendor's result page. Individual failures keep the original offer;
// successes land by index, so enrichment runs fully concurrently.
func (c *Coordinator) enrichTop(ctx context.Context, vendor string, offers []types.Offer) {
	n := c.config.EnrichTop
	if n <= 0 || len(offers) == 0 {
		return
	}
	if n > len(offers) {
		n = len(offers)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if offers[i].ID == "" {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := c.client.Enrich(ctx, vendor, offers[i].ID)
			if err != nil {
				c.logger.Debug().Err(err).Str("vendor", vendor).Str("offer", offers[i].ID).Msg("Enrichment failed")
				return
			}
			offers[i] = normalize.Enrich(offers[i], *e)
		}(i)
	}
	wg.Wait()
}

// commit writes a vendor's results into its cache slot iff no newer
// request has been issued meanwhile. Superseded results are discarded.
func (c *Coordinator) commit(vendor string, gen uint64, offers []types.Offer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slots[vendor]
	if !ok || slot.gen != gen {
		supersededResults.WithLabelValues(vendor).Inc()
		c.logger.Debug().Str("vendor", vendor).Uint64("gen", gen).Msg("Discarding superseded vendor results")
		return
	}
	slot.offers = offers
}

// Pools returns the current cache snapshot for the given vendors
// without issuing any requests.
func (c *Coordinator) Pools(vendorNames []string) map[string][]types.Offer {
	pools := make(map[string][]types.Offer, len(vendorNames))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range vendorNames {
		if slot, ok := c.slots[v]; ok {
			pools[v] = slot.offers
		}
	}
	return pools
}
