// Package grouping clusters offers that represent the same physical
// product across vendors, keyed by their derived signature.
package grouping

import (
	"sort"

	"github.com/pricescanner/aggregator/internal/matching"
	"github.com/pricescanner/aggregator/internal/types"
)

// PriceFunc expresses an offer's price in the display currency.
type PriceFunc func(types.Offer) float64

// Cluster groups offers by product signature. Within each group offers
// are sorted by converted price ascending; groups are ordered by
// descending size (multi-vendor matches first) with ties broken by the
// cheapest offer's price. Every input offer lands in exactly one group;
// single-offer groups are valid.
func Cluster(offers []types.Offer, signer matching.Signer, price PriceFunc) []types.ProductGroup {
	if signer == nil {
		signer = matching.HeuristicSigner{}
	}

	index := make(map[string]int, len(offers))
	groups := make([]types.ProductGroup, 0)

	for _, o := range offers {
		sig := signer.Signature(o)
		i, ok := index[sig]
		if !ok {
			i = len(groups)
			index[sig] = i
			groups = append(groups, types.ProductGroup{Signature: sig})
		}
		groups[i].Offers = append(groups[i].Offers, o)
	}

	for i := range groups {
		g := &groups[i]
		sort.SliceStable(g.Offers, func(a, b int) bool {
			return price(g.Offers[a]) < price(g.Offers[b])
		})
		g.Title = displayTitle(g.Offers)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if len(groups[a].Offers) != len(groups[b].Offers) {
			return len(groups[a].Offers) > len(groups[b].Offers)
		}
		return price(groups[a].Offers[0]) < price(groups[b].Offers[0])
	})

	return groups
}

// displayTitle picks the shortest member title, a cheap proxy for the
// least marketing noise. Falls back to the first offer's title.
func displayTitle(offers []types.Offer) string {
	if len(offers) == 0 {
		return ""
	}
	title := offers[0].Title
	for _, o := range offers[1:] {
		if o.Title != "" && (title == "" || len(o.Title) < len(title)) {
			title = o.Title
		}
	}
	return title
}
