// Package pipeline assembles the final comparable result set out of
// per-vendor offer pools: filtering, sorting, deduplication, and the
// optional product clustering transform.
package pipeline

import (
	"sort"
	"strings"

	"github.com/pricescanner/aggregator/internal/grouping"
	"github.com/pricescanner/aggregator/internal/matching"
	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/types"
)

// PriceFunc expresses an offer's price in the display currency.
type PriceFunc func(types.Offer) float64

// BuildResults produces the ordered result list for a session. Steps,
// in order: concatenate enabled vendors' pools, text filter, converted
// price bounds, shipping ceiling, sort, dedupe. Pure with respect to
// its inputs; session state is explicit, never ambient.
func BuildResults(session types.Session, pools map[string][]types.Offer, table *types.RateTable) []types.Offer {
	price := rates.PriceIn(session.Currency, table)

	size := 0
	for _, v := range session.Vendors {
		size += len(pools[v])
	}
	results := make([]types.Offer, 0, size)
	for _, v := range session.Vendors {
		results = append(results, pools[v]...)
	}

	if q := strings.ToLower(strings.TrimSpace(session.Query)); q != "" {
		filtered := results[:0]
		for _, o := range results {
			if strings.Contains(strings.ToLower(o.Title), q) {
				filtered = append(filtered, o)
			}
		}
		results = filtered
	}

	if session.MinPrice != nil || session.MaxPrice != nil {
		filtered := results[:0]
		for _, o := range results {
			p := price(o)
			if session.MinPrice != nil && p < *session.MinPrice {
				continue
			}
			if session.MaxPrice != nil && p > *session.MaxPrice {
				continue
			}
			filtered = append(filtered, o)
		}
		results = filtered
	}

	if session.MaxShipDays != nil {
		filtered := results[:0]
		for _, o := range results {
			if o.ShipDays <= *session.MaxShipDays {
				filtered = append(filtered, o)
			}
		}
		results = filtered
	}

	switch session.Sort {
	case types.SortPriceDesc:
		sort.SliceStable(results, func(i, j int) bool { return price(results[i]) > price(results[j]) })
	case types.SortRating:
		sort.SliceStable(results, func(i, j int) bool { return results[i].Rating > results[j].Rating })
	default:
		sort.SliceStable(results, func(i, j int) bool { return price(results[i]) < price(results[j]) })
	}

	return Dedupe(results, price)
}

// BuildGroups runs the pipeline and applies the clustering transform to
// its output. Clustering is a display-only final step: filtering and
// sorting are computed pre-cluster.
func BuildGroups(session types.Session, pools map[string][]types.Offer, table *types.RateTable, signer matching.Signer) []types.ProductGroup {
	results := BuildResults(session, pools, table)
	price := rates.PriceIn(session.Currency, table)
	return grouping.Cluster(results, signer, grouping.PriceFunc(price))
}
