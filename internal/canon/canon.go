// Package canon implements the canonicalizer (spec §4.1): text
// normalization and the canonical identifier derived from it. It is
// pure and has no dependency on any other engine package.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"ledgerengine/pkg/primitives"
)

// Normalize canonicalizes statement text: Unicode NFC, case-fold,
// collapse internal whitespace to single spaces, strip leading/trailing
// whitespace and trailing punctuation.
func Normalize(text string) string {
	folded := norm.NFC.String(text)
	folded = strings.ToLower(folded)
	folded = collapseWhitespace(folded)
	folded = strings.TrimRightFunc(folded, isTrailingPunctuation)
	return strings.TrimSpace(folded)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func isTrailingPunctuation(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', ' ':
		return true
	default:
		return unicode.IsPunct(r) && r != '\''
	}
}

// CanonicalID hashes normalized text into a stable identifier (spec §3
// "CanonicalId = a stable hash... of normalized statement text").
func CanonicalID(text string) primitives.CanonicalID {
	normalized := Normalize(text)
	sum := sha256.Sum256([]byte(normalized))
	return primitives.CanonicalID(hex.EncodeToString(sum[:]))
}
