package gates

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var typographicReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", // curly single quotes
	"“", "\"", "”", "\"", // curly double quotes
	"–", "-", "—", "-", // en/em dash
	"…", "...", // ellipsis
)

// NormalizeQuote applies NFC normalization, strips zero-width and
// control characters, and maps typographic punctuation to its plain
// ASCII equivalent (spec §4.10 step 6).
func NormalizeQuote(text string) string {
	folded := norm.NFC.String(text)
	folded = typographicReplacer.Replace(folded)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isZeroWidth(r) || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	default:
		return false
	}
}

// QuoteFidelityMatches reports whether the normalized quote appears
// verbatim within the normalized evidence text (spec §4.10 step 6).
func QuoteFidelityMatches(quote, evidenceText string) bool {
	if quote == "" {
		return false
	}
	normalizedQuote := NormalizeQuote(quote)
	normalizedEvidence := NormalizeQuote(evidenceText)
	return strings.Contains(normalizedEvidence, normalizedQuote)
}
