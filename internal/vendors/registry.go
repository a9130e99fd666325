// Package vendors knows the marketplaces the aggregator can query and
// how to talk to the external search backend on their behalf.
package vendors

import "strings"

// Slug is the unique identifier of a marketplace
type Slug string

const (
	VendorAmazon       Slug = "amazon"
	VendorEbay         Slug = "ebay"
	VendorWalmart      Slug = "walmart"
	VendorAliExpress   Slug = "aliexpress"
	VendorEtsy         Slug = "etsy"
	VendorRakuten      Slug = "rakuten"
	VendorShopee       Slug = "shopee"
	VendorLazada       Slug = "lazada"
	VendorTemu         Slug = "temu"
	VendorMercadoLibre Slug = "mercadolibre"
	VendorBestBuy      Slug = "bestbuy"
	VendorTarget       Slug = "target"
	VendorNewegg       Slug = "newegg"
	VendorHomeDepot    Slug = "homedepot"
	VendorWayfair      Slug = "wayfair"
)

// Slugs contains all supported vendors in display order
var Slugs = []Slug{
	VendorAmazon,
	VendorEbay,
	VendorWalmart,
	VendorAliExpress,
	VendorEtsy,
	VendorRakuten,
	VendorShopee,
	VendorLazada,
	VendorTemu,
	VendorMercadoLibre,
	VendorBestBuy,
	VendorTarget,
	VendorNewegg,
	VendorHomeDepot,
	VendorWayfair,
}

// Info describes a marketplace
type Info struct {
	Slug       Slug   `json:"slug"`
	Name       string `json:"name"`
	HomeMarket string `json:"homeMarket"`
}

// Infos contains metadata for all supported vendors
var Infos = map[Slug]Info{
	VendorAmazon:       {Slug: VendorAmazon, Name: "Amazon", HomeMarket: "US"},
	VendorEbay:         {Slug: VendorEbay, Name: "eBay", HomeMarket: "US"},
	VendorWalmart:      {Slug: VendorWalmart, Name: "Walmart", HomeMarket: "US"},
	VendorAliExpress:   {Slug: VendorAliExpress, Name: "AliExpress", HomeMarket: "CN"},
	VendorEtsy:         {Slug: VendorEtsy, Name: "Etsy", HomeMarket: "US"},
	VendorRakuten:      {Slug: VendorRakuten, Name: "Rakuten", HomeMarket: "JP"},
	VendorShopee:       {Slug: VendorShopee, Name: "Shopee", HomeMarket: "SG"},
	VendorLazada:       {Slug: VendorLazada, Name: "Lazada", HomeMarket: "SG"},
	VendorTemu:         {Slug: VendorTemu, Name: "Temu", HomeMarket: "CN"},
	VendorMercadoLibre: {Slug: VendorMercadoLibre, Name: "MercadoLibre", HomeMarket: "AR"},
	VendorBestBuy:      {Slug: VendorBestBuy, Name: "BestBuy", HomeMarket: "US"},
	VendorTarget:       {Slug: VendorTarget, Name: "Target", HomeMarket: "US"},
	VendorNewegg:       {Slug: VendorNewegg, Name: "Newegg", HomeMarket: "US"},
	VendorHomeDepot:    {Slug: VendorHomeDepot, Name: "HomeDepot", HomeMarket: "US"},
	VendorWayfair:      {Slug: VendorWayfair, Name: "Wayfair", HomeMarket: "US"},
}

// IsValid reports whether slug names a supported vendor
func IsValid(slug string) bool {
	_, ok := Infos[Slug(strings.ToLower(slug))]
	return ok
}

// DefaultEnabled returns the full vendor roster as strings, the
// enabled set a fresh session starts with.
func DefaultEnabled() []string {
	out := make([]string, len(Slugs))
	for i, s := range Slugs {
		out[i] = string(s)
	}
	return out
}
