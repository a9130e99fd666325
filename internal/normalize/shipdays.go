package normalize

import "strings"

// Shipping estimates are a pure lookup: fast-carrier vendors ship in 3
// days to recognized domestic markets and 7 elsewhere; cross-border
// marketplaces ship in 7 days inside their home market and 14 outside
// it; everything else gets 10.
const (
	shipFastDomestic   = 3
	shipFastAbroad     = 7
	shipMarketHome     = 7
	shipMarketAbroad   = 14
	shipDefault        = 10
)

// fastCarriers are vendors with their own fulfilment networks.
var fastCarriers = map[string]bool{
	"amazon":    true,
	"walmart":   true,
	"bestbuy":   true,
	"target":    true,
	"newegg":    true,
	"homedepot": true,
	"wayfair":   true,
}

// domesticCountries is the recognized fast-delivery country set.
var domesticCountries = map[string]bool{
	"US": true,
	"CA": true,
	"GB": true,
	"DE": true,
	"SG": true,
	"AU": true,
}

// marketplaceHome maps cross-border marketplaces to their home market.
var marketplaceHome = map[string]string{
	"ebay":         "US",
	"aliexpress":   "CN",
	"temu":         "CN",
	"shopee":       "SG",
	"lazada":       "SG",
	"rakuten":      "JP",
	"mercadolibre": "AR",
}

// EstimateShipDays returns the deterministic delivery estimate for a
// vendor shipping to the user's country. Pure and side-effect free.
func EstimateShipDays(vendor, country string) int {
	v := strings.ToLower(strings.TrimSpace(vendor))
	c := strings.ToUpper(strings.TrimSpace(country))

	if fastCarriers[v] {
		if domesticCountries[c] {
			return shipFastDomestic
		}
		return shipFastAbroad
	}

	if home, ok := marketplaceHome[v]; ok {
		if c == home {
			return shipMarketHome
		}
		return shipMarketAbroad
	}

	return shipDefault
}
