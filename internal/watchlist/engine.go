package watchlist

import (
	"strings"

	"github.com/pricescanner/aggregator/internal/types"
)

// PriceFunc expresses an offer's price in the display currency.
type PriceFunc func(types.Offer) float64

// Notification is emitted when a watch transitions from waiting to
// triggered within one evaluation pass.
type Notification struct {
	WatchID string  `json:"watchId"`
	Title   string  `json:"title"`
	Vendor  string  `json:"vendor"`
	Price   float64 `json:"price"`
}

// EvalResult is the outcome of one evaluation pass.
type EvalResult struct {
	Watches       []types.WatchEntry
	Changed       bool
	Notifications []Notification
}

// Evaluate runs one trigger-evaluation pass over all watches against
// the current result set. For each watch it finds the cheapest matching
// offer, initializes the baseline on first match, recomputes the
// discount, and re-evaluates both trigger conditions from scratch, so
// a watch detriggers when its conditions stop holding.
//
// Watches with no matching candidate are returned untouched. Changed
// reports whether any persisted field differs from the input, bounding
// persistence writes. Every watch that newly triggered contributes one
// notification, in input order.
func Evaluate(watches []types.WatchEntry, offers []types.Offer, price PriceFunc) EvalResult {
	result := EvalResult{
		Watches: make([]types.WatchEntry, 0, len(watches)),
	}

	for _, w := range watches {
		best, ok := bestMatch(w, offers, price)
		if !ok {
			result.Watches = append(result.Watches, w)
			continue
		}

		bestPrice := price(best)
		updated := w.Clone()

		if updated.Baseline == nil {
			updated.Baseline = types.Float64Ptr(bestPrice)
		}

		discount := 0.0
		if *updated.Baseline > 0 {
			discount = (*updated.Baseline - bestPrice) / *updated.Baseline * 100
		}

		priceTriggered := updated.TargetPrice != nil && bestPrice <= *updated.TargetPrice
		discountTriggered := updated.DiscountPct != nil && discount >= *updated.DiscountPct
		triggered := priceTriggered || discountTriggered

		if triggered && !w.Triggered {
			triggerTransitions.Inc()
			result.Notifications = append(result.Notifications, Notification{
				WatchID: w.ID,
				Title:   w.Title,
				Vendor:  best.Vendor,
				Price:   bestPrice,
			})
		}

		updated.Last = types.Float64Ptr(bestPrice)
		updated.LastVendor = best.Vendor
		updated.Triggered = triggered

		if entryChanged(w, updated) {
			result.Changed = true
		}
		result.Watches = append(result.Watches, updated)
	}

	return result
}

// bestMatch returns the cheapest offer whose vendor is in the watch's
// vendor set and whose title contains the watched title. Price ties
// keep the earliest encountered offer.
func bestMatch(w types.WatchEntry, offers []types.Offer, price PriceFunc) (types.Offer, bool) {
	watchTitle := strings.ToLower(w.Title)

	vendorSet := make(map[string]bool, len(w.Vendors))
	for _, v := range w.Vendors {
		vendorSet[strings.ToLower(v)] = true
	}

	var best types.Offer
	bestPrice := 0.0
	found := false

	for _, o := range offers {
		if !vendorSet[strings.ToLower(o.Vendor)] {
			continue
		}
		if !strings.Contains(strings.ToLower(o.Title), watchTitle) {
			continue
		}
		p := price(o)
		if !found || p < bestPrice {
			best = o
			bestPrice = p
			found = true
		}
	}

	return best, found
}

// entryChanged reports whether any trigger-engine-owned field differs.
func entryChanged(before, after types.WatchEntry) bool {
	return before.Triggered != after.Triggered ||
		!floatPtrEqual(before.Last, after.Last) ||
		before.LastVendor != after.LastVendor ||
		!floatPtrEqual(before.Baseline, after.Baseline)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
