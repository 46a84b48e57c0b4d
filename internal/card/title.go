package card

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus a combining mark.
var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "Oe",
	"æ", "ae", "Æ", "Ae",
	"ß", "ss",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th",
	"ı", "i",
)

var (
	lower = cases.Lower(language.Und)
	upper = cases.Upper(language.Und)
)

// Deburr strips diacritics and expands ligatures (e.g., "crêpes brûlées" -> "crepes brulees")
func Deburr(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return ligatures.Replace(out)
}

// Capitalize upper-cases the first letter of a word and lower-cases the rest
func Capitalize(word string) string {
	if word == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(word)
	return upper.String(word[:size]) + lower.String(word[size:])
}

// TitleCase capitalizes every space separated word, keeping the spacing as written
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = Capitalize(w)
	}
	return strings.Join(words, " ")
}

// NormalizeTitle trims, removes diacritics and title-cases a card title
func NormalizeTitle(s string) string {
	return TitleCase(Deburr(strings.TrimSpace(s)))
}
