package note

import (
	"strings"
	"unicode"
)

var punctuation = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`, "‶", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'", "‵", "'",
	"–", "-", "—", "-",
	"…", "...",
)

// CleanText tidies text copied out of a PDF: line breaks and runs of
// whitespace collapse to one space, control characters are dropped, typographic
// quotes, dashes and ellipses become ASCII, and a space separates CJK from
// adjacent Latin letters or digits.
func CleanText(s string) string {
	s = punctuation.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '\u200b' || r == '\u180e':
			space = true
			continue
		case unicode.IsControl(r) || r >= '\ufff0':
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	return spaceMixedScripts(b.String())
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul, unicode.Bopomofo)
}

func isLatin(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func spaceMixedScripts(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for i, r := range s {
		if i > 0 && ((isCJK(prev) && isLatin(r)) || (isLatin(prev) && isCJK(r))) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
