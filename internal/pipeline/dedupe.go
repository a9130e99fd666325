package pipeline

import (
	"strings"

	"github.com/pricescanner/aggregator/internal/types"
)

// Dedupe collapses offers sharing a (lowercased title, vendor) key,
// keeping the cheapest in display currency; price ties keep the
// first-seen offer. Surviving offers retain the order in which their
// key first appeared, so the operation is idempotent and stable.
func Dedupe(offers []types.Offer, price PriceFunc) []types.Offer {
	type slot struct {
		offer types.Offer
		price float64
	}

	order := make([]string, 0, len(offers))
	best := make(map[string]slot, len(offers))

	for _, o := range offers {
		key := strings.ToLower(o.Title) + "\x00" + o.Vendor
		p := price(o)
		cur, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = slot{offer: o, price: p}
			continue
		}
		if p < cur.price {
			best[key] = slot{offer: o, price: p}
		}
	}

	out := make([]types.Offer, 0, len(order))
	for _, key := range order {
		out = append(out, best[key].offer)
	}
	return out
}
