package types

import "time"

// RawOffer represents one vendor record exactly as the search backend
// returned it. Optional fields are pointers so that "absent" is
// distinguishable from a zero value; the normalizer fills the gaps.
type RawOffer struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Currency *string  `json:"currency,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	ShipDays *int     `json:"shipDays,omitempty"`
	Image    string   `json:"image,omitempty"`
	URL      string   `json:"url,omitempty"`
	Shipping string   `json:"shipping,omitempty"`
	ShipTime string   `json:"shipTime,omitempty"`
	UPC      string   `json:"upc,omitempty"`
	EAN      string   `json:"ean,omitempty"`
	ISBN     string   `json:"isbn,omitempty"`
	Model    string   `json:"model,omitempty"`
	MPN      string   `json:"mpn,omitempty"`
}

// Offer is a fully normalized listing. Created fresh on every search
// response; never mutated after creation except by enrichment, which
// overwrites Price/Currency/URL on a successful per-item fetch.
type Offer struct {
	ID       string  `json:"id,omitempty"`
	Title    string  `json:"title"`
	Vendor   string  `json:"vendor"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Rating   float64 `json:"rating"`
	ShipDays int     `json:"shipDays"`
	Image    string  `json:"image,omitempty"`
	URL      string  `json:"url,omitempty"`
	Shipping string  `json:"shipping,omitempty"`
	ShipTime string  `json:"shipTime,omitempty"`
	UPC      string  `json:"upc,omitempty"`
	EAN      string  `json:"ean,omitempty"`
	ISBN     string  `json:"isbn,omitempty"`
	Model    string  `json:"model,omitempty"`
	MPN      string  `json:"mpn,omitempty"`
}

// Enrichment is the result of a follow-up per-item detail fetch.
type Enrichment struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	URL      string  `json:"url,omitempty"`
}

// ProductGroup is a cluster of offers sharing one product signature,
// ordered by converted price ascending. Built transiently per render
// pass; never persisted.
type ProductGroup struct {
	Signature string  `json:"signature"`
	Title     string  `json:"title"`
	Offers    []Offer `json:"offers"`
}

// RateTable is a cached exchange-rate snapshot relative to Base.
// Replaced wholesale on refresh, never partially updated.
// Invariant: Rates[Base] == 1.
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// SortMode selects the result ordering of the pipeline.
type SortMode string

const (
	SortPriceAsc  SortMode = "priceAsc"
	SortPriceDesc SortMode = "priceDesc"
	SortRating    SortMode = "rating"
)

// Session carries all per-request display state: which vendors are
// enabled, the display currency, the user's country, and the active
// filters. The pipeline reads nothing outside of it.
type Session struct {
	Query       string   `json:"query"`
	Vendors     []string `json:"vendors"`
	Currency    string   `json:"currency"`
	Country     string   `json:"country"`
	Sort        SortMode `json:"sort"`
	MinPrice    *float64 `json:"minPrice,omitempty"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	MaxShipDays *int     `json:"maxShipDays,omitempty"`
	Cluster     bool     `json:"cluster"`
	Page        int      `json:"page"`
	PageSize    int      `json:"pageSize"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to the given float64
func Float64Ptr(f float64) *float64 {
	return &f
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}
