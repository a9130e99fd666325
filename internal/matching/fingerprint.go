package matching

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxAlphaTokens   = 5
	maxNumericTokens = 3
)

var (
	trademarkRe = regexp.MustCompile(`[™®©]`)
	bracketRe   = regexp.MustCompile(`[\[\]{}()<>]`)
	charsetRe   = regexp.MustCompile(`[^a-z0-9 \-+]`)
	tokenRe     = regexp.MustCompile(`[^a-z0-9+\-]`)
	capacityRe  = regexp.MustCompile(`\b(\d+)\s*(tb|gb)\b`)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

// stopwords are generic marketing and connective terms that carry no
// product identity.
var stopwords = map[string]bool{
	"new": true, "original": true, "genuine": true, "official": true,
	"case": true, "cover": true, "with": true, "for": true, "the": true,
	"and": true, "of": true, "in": true, "on": true, "a": true, "an": true,
	"to": true, "by": true, "hot": true, "sale": true, "deal": true,
	"free": true, "shipping": true, "pcs": true, "set": true, "pack": true,
}

// NormalizeTitle canonicalizes a listing title: lowercase, trademark
// glyphs stripped, brackets spaced out, everything outside
// [a-z0-9 -+] removed, whitespace collapsed.
func NormalizeTitle(title string) string {
	t := strings.ToLower(removeDiacritics(title))
	t = trademarkRe.ReplaceAllString(t, "")
	t = bracketRe.ReplaceAllString(t, " ")
	t = charsetRe.ReplaceAllString(t, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " "))
}

// Fingerprint derives an order-independent, length-bounded key from a
// listing title. Capacity notation is collapsed ("2 tb" -> "2tb"),
// stopwords dropped, and the remainder reduced to the first five
// alphabetic and first three digit-bearing tokens, deduplicated, sorted
// and joined with "_". Titles that differ only in word order or
// marketing filler fingerprint identically.
func Fingerprint(title string) string {
	normalized := capacityRe.ReplaceAllString(NormalizeTitle(title), "$1$2")

	var alpha, numeric []string
	for _, token := range strings.Fields(normalized) {
		token = tokenRe.ReplaceAllString(token, "")
		if token == "" || stopwords[token] {
			continue
		}
		if digitRe.MatchString(token) {
			if len(numeric) < maxNumericTokens {
				numeric = append(numeric, token)
			}
		} else if len(alpha) < maxAlphaTokens {
			alpha = append(alpha, token)
		}
	}

	seen := make(map[string]bool, maxAlphaTokens+maxNumericTokens)
	tokens := make([]string, 0, maxAlphaTokens+maxNumericTokens)
	for _, token := range append(alpha, numeric...) {
		if !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}

	sort.Strings(tokens)
	return strings.Join(tokens, "_")
}
