package types

// WatchEntry is a persisted price-watch subscription. The ID is derived
// deterministically from the watched title and the enabled vendor set,
// so the same watch cannot be added twice.
//
// Only the trigger engine mutates Baseline/Last/LastVendor/Triggered;
// threshold fields change through explicit user edits.
type WatchEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Vendors     []string `json:"vendors"`
	TargetPrice *float64 `json:"targetPrice,omitempty"`
	DiscountPct *float64 `json:"discountPct,omitempty"`
	Baseline    *float64 `json:"baseline,omitempty"`
	Last        *float64 `json:"last,omitempty"`
	LastVendor  string   `json:"lastVendor,omitempty"`
	Triggered   bool     `json:"triggered"`
	EmailOpt    bool     `json:"emailOpt"`
}

// Clone returns a deep copy of the entry (the vendor slice is not shared).
func (w WatchEntry) Clone() WatchEntry {
	c := w
	c.Vendors = append([]string(nil), w.Vendors...)
	if w.TargetPrice != nil {
		c.TargetPrice = Float64Ptr(*w.TargetPrice)
	}
	if w.DiscountPct != nil {
		c.DiscountPct = Float64Ptr(*w.DiscountPct)
	}
	if w.Baseline != nil {
		c.Baseline = Float64Ptr(*w.Baseline)
	}
	if w.Last != nil {
		c.Last = Float64Ptr(*w.Last)
	}
	return c
}
