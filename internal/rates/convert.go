package rates

import (
	"strings"

	"github.com/pricescanner/aggregator/internal/types"
)

// Convert expresses amount (denominated in from) in the to currency
// using the given rate table. The second return value reports whether a
// real conversion happened: it is false when either currency code is
// unknown to the table and the amount was passed through unchanged.
//
// Same-currency conversions return the amount exactly, with no rate
// lookup and no rounding. A nil table degrades to identity.
func Convert(amount float64, from, to string, table *types.RateTable) (float64, bool) {
	if strings.EqualFold(from, to) {
		return amount, true
	}
	if table == nil {
		return amount, false
	}

	rateFrom, okFrom := resolveRate(from, table)
	rateTo, okTo := resolveRate(to, table)
	if !okFrom || !okTo {
		// Unknown currency code: pass through rather than dropping the
		// offer. Callers that care inspect the converted flag.
		return amount, false
	}

	return amount * (rateTo / rateFrom), true
}

// resolveRate returns the multiplier for a currency relative to the
// table base. The base itself always resolves to 1.
func resolveRate(code string, table *types.RateTable) (float64, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == strings.ToUpper(table.Base) {
		return 1, true
	}
	rate, ok := table.Rates[c]
	if !ok || rate == 0 {
		return 0, false
	}
	return rate, true
}

// Degenerate returns the last-resort table used when no fetched table
// is available: USD-only, so every non-USD conversion is an identity.
func Degenerate() *types.RateTable {
	return &types.RateTable{
		Base:  "USD",
		Rates: map[string]float64{"USD": 1},
	}
}
