// Package slug turns lesson and episode titles into file name fragments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen bounds a slug so journal paths stay short.
const MaxLen = 48

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases title, folds accented letters to ASCII and joins the
// remaining alphanumeric runs with single dashes.
func Make(title string) string {
	folded, _, err := transform.String(stripMarks, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= MaxLen {
			break
		}
	}
	s := b.String()
	if len(s) > MaxLen {
		s = s[:MaxLen]
	}
	s = strings.TrimRight(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}
