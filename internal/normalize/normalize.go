// Package normalize turns raw vendor records into complete, comparable
// offers: currency defaulting, rating defaulting, shipping estimates,
// and placeholder imagery.
package normalize

import (
	"strings"

	"github.com/pricescanner/aggregator/internal/types"
)

const (
	// DefaultCurrency is assumed when a vendor omits the currency code.
	DefaultCurrency = "USD"

	// NeutralRating stands in for listings with no rating data.
	NeutralRating = 4.2

	// PlaceholderImage replaces missing or non-HTTP image references.
	PlaceholderImage = "/assets/placeholder-product.svg"
)

// Offer completes a raw vendor record into an Offer. Missing currency
// defaults to USD, missing rating to the neutral constant, missing
// shipping duration to the deterministic vendor/country estimate, and
// missing or non-HTTP images to the placeholder. Never fails: malformed
// input degrades to defaults.
func Offer(raw types.RawOffer, vendor, country string) types.Offer {
	o := types.Offer{
		ID:       raw.ID,
		Title:    raw.Title,
		Vendor:   vendor,
		Price:    raw.Price,
		Currency: DefaultCurrency,
		Rating:   NeutralRating,
		Image:    PlaceholderImage,
		URL:      raw.URL,
		Shipping: raw.Shipping,
		ShipTime: raw.ShipTime,
		UPC:      raw.UPC,
		EAN:      raw.EAN,
		ISBN:     raw.ISBN,
		Model:    raw.Model,
		MPN:      raw.MPN,
	}

	if o.Price < 0 {
		o.Price = 0
	}

	if raw.Currency != nil && strings.TrimSpace(*raw.Currency) != "" {
		o.Currency = strings.ToUpper(strings.TrimSpace(*raw.Currency))
	}

	if raw.Rating != nil && *raw.Rating >= 0 && *raw.Rating <= 5 {
		o.Rating = *raw.Rating
	}

	if raw.ShipDays != nil && *raw.ShipDays > 0 {
		o.ShipDays = *raw.ShipDays
	} else {
		o.ShipDays = EstimateShipDays(vendor, country)
	}

	if isHTTPImage(raw.Image) {
		o.Image = raw.Image
	}

	return o
}

// Enrich applies a successful per-item detail fetch to a copy of the
// offer. A non-positive price leaves the offer untouched.
func Enrich(o types.Offer, e types.Enrichment) types.Offer {
	if e.Price <= 0 {
		return o
	}
	o.Price = e.Price
	if e.Currency != "" {
		o.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	}
	if e.URL != "" {
		o.URL = e.URL
	}
	return o
}

func isHTTPImage(image string) bool {
	return strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://")
}
