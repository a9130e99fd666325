// Package matching derives cross-vendor product identities. Vendors
// rarely share listing identifiers, so identity falls back through a
// priority chain: global trade number, manufacturer model number, and
// finally a fuzzy fingerprint of the normalized title.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pricescanner/aggregator/internal/types"
)

var (
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Signer derives product signatures. The interface exists so an exact
// catalog-backed matcher can replace the heuristic one without touching
// callers.
type Signer interface {
	Signature(o types.Offer) string
}

// HeuristicSigner is the default Signer built on identifier priority
// plus title fingerprinting.
type HeuristicSigner struct{}

// Signature implements Signer.
func (HeuristicSigner) Signature(o types.Offer) string {
	return Signature(o)
}

// Signature derives the product signature for an offer. Priority:
// global trade identifier > manufacturer model/part number > normalized
// title fingerprint. Deterministic pure function of the offer's
// identifying fields; never returns the empty string.
func Signature(o types.Offer) string {
	if gtin := NormalizeGTIN(o.UPC, o.EAN, o.ISBN); gtin != "" {
		return "gtin:" + gtin
	}

	if model := normalizeModel(o.Model, o.MPN); model != "" {
		return "model:" + model
	}

	if fp := Fingerprint(o.Title); fp != "" {
		return "title:" + fp
	}

	// Normalization stripped every token; fall back to raw identity so
	// the signature is still never empty.
	if o.ID != "" {
		return "title:" + strings.ToLower(o.ID)
	}
	return "title:" + strings.ToLower(strings.TrimSpace(o.Title))
}

// NormalizeGTIN returns the digits of the first present trade
// identifier (UPC, EAN, ISBN in that order), or "" when none carries
// any digits.
func NormalizeGTIN(codes ...string) string {
	for _, code := range codes {
		digits := nonDigitRe.ReplaceAllString(code, "")
		if digits != "" {
			return digits
		}
	}
	return ""
}

// normalizeModel lowercases and strips all whitespace from the first
// present model/part number.
func normalizeModel(codes ...string) string {
	for _, code := range codes {
		m := whitespaceRe.ReplaceAllString(strings.ToLower(code), "")
		if m != "" {
			return m
		}
	}
	return ""
}

// removeDiacritics folds accented characters to their ASCII base so the
// later charset strip does not destroy them.
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
