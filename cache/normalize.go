package cache

import (
	"strings"
	"unicode"
)

// normalizeName lowercases s for use as a key segment. A lower-to-upper case
// change starts a new word and every run of characters other than letters and
// digits becomes one underscore, so "ProductCatalog" and "product-catalog"
// both yield "product_catalog" and the result never contains the key
// separator.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	var prev rune
	pending := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if b.Len() > 0 && (pending || unicode.IsUpper(r) && unicode.IsLower(prev)) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			pending = false
		default:
			pending = true
		}
		prev = r
	}
	return b.String()
}
