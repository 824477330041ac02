// Package naming holds the pure normalization functions applied to
// user-supplied names before uniqueness checks and persistence.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TitleCase trims the input, collapses internal whitespace runs to a single
// space, and title-cases it: a letter is uppercased when it follows a
// non-letter and lowercased otherwise. "john  smith" and "JOHN SMITH" both
// canonicalize to "John Smith"; "o'brien" and "O'BRIEN" to "O'Brien".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			pendingSpace = true
			prevLetter = false
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// Slugify derives a URL slug from a name: accented letters are reduced to
// their ASCII base via NFKD decomposition, then lowercase, runs of whitespace,
// hyphens and underscores become single hyphens, and everything outside
// [a-z0-9-] is dropped. Deterministic, so saving twice always yields the same
// slug. "Déjà Vu" becomes "deja-vu".
func Slugify(s string) string {
	decomposed := norm.NFKD.String(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(decomposed))

	pendingHyphen := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			// Combining mark left over from decomposition.
			continue
		}
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}
