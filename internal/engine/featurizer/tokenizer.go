package featurizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	startMarker = '\x02'
	endMarker   = '\x03'
)

// normalize cleans, lowercases and (unless keepDiacritics) strips accents.
// Punctuation and digits are kept.
func normalize(text string, keepDiacritics bool) string {
	text = cleanText(text)
	text = strings.ToLower(text)
	if !keepDiacritics {
		text = stripAccents(text)
	}
	return text
}

// words splits normalized text on whitespace.
func words(text string) []string {
	return strings.Fields(text)
}

// wordNgrams returns every n-gram of length 1..maxLen, shorter first within
// each start position order.
func wordNgrams(tokens []string, maxLen int) []string {
	var grams []string
	for n := 1; n <= maxLen; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// charNgrams returns every run of exactly n runes over text wrapped in the
// start and end markers.
func charNgrams(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	runes := make([]rune, 0, len(text)+2)
	runes = append(runes, startMarker)
	runes = append(runes, []rune(text)...)
	runes = append(runes, endMarker)

	var grams []string
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// cleanText removes control characters and replaces whitespace with spaces.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripAccents removes combining diacritical marks after NFD normalization.
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}
