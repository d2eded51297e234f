// Package slug derives URL-safe identifiers from titles and tag names.
package slug

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make folds s to ASCII where possible, lowercases it and joins the
// remaining letter and digit runs with single hyphens.
func Make(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Tag returns the URL key of a tag. Tags that differ only in case or
// surrounding space share a key; any other pair of tags gets distinct keys.
// A tag already in slug form is its own key. Others get their slug, if any,
// followed by "--" and the hex of the case-folded text. Make never emits
// "--", so the two forms cannot collide.
func Tag(s string) string {
	folded := cases.Fold().String(strings.TrimSpace(s))
	if folded == "" {
		return ""
	}
	base := Make(folded)
	if base == folded {
		return base
	}
	return base + "--" + hex.EncodeToString([]byte(folded))
}
