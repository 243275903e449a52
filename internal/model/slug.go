package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and strips combining marks,
// so "Événement" becomes "Evenement".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ligatures that survive NFD decomposition and need explicit folding
var ligatureReplacer = strings.NewReplacer(
	"œ", "oe",
	"Œ", "oe",
	"æ", "ae",
	"Æ", "ae",
	"ß", "ss",
)

// Slugify converts text to a URL-safe lowercase ASCII slug.
// Accented characters are transliterated, everything that is not a
// letter or digit becomes a hyphen, and runs of hyphens collapse.
func Slugify(text string) string {
	folded, _, err := transform.String(asciiFold, text)
	if err != nil {
		folded = text
	}
	folded = ligatureReplacer.Replace(folded)
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	prevHyphen := true // suppress leading hyphen
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
