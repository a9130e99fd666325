// Package watchlist maintains persisted price watches and evaluates
// their discount/target triggers against fresh pipeline output.
package watchlist

import (
	"sort"
	"strings"

	"github.com/pricescanner/aggregator/internal/types"
)

// EntryID derives the deterministic watch identifier from the watched
// title and the vendor set. Acts as the dedup key: the same watch can
// never be added twice.
func EntryID(title string, vendorNames []string) string {
	sorted := append([]string(nil), vendorNames...)
	sort.Strings(sorted)
	return strings.ToLower(title + "|" + strings.Join(sorted, ","))
}

// NewOfferWatch creates a watch for a single offer. The target price is
// seeded just under the offer's current price so the watch fires on the
// next real drop.
func NewOfferWatch(o types.Offer, vendorNames []string) types.WatchEntry {
	target := o.Price - 1
	if target < 0 {
		target = 0
	}
	return types.WatchEntry{
		ID:          EntryID(o.Title, vendorNames),
		Title:       o.Title,
		Vendors:     append([]string(nil), vendorNames...),
		TargetPrice: types.Float64Ptr(target),
	}
}

// NewGroupWatch creates a watch for a product group, keyed by its
// cross-vendor signature rather than one listing's title.
func NewGroupWatch(g types.ProductGroup, vendorNames []string) types.WatchEntry {
	return types.WatchEntry{
		ID:      EntryID("group:"+g.Signature, vendorNames),
		Title:   g.Title,
		Vendors: append([]string(nil), vendorNames...),
	}
}
