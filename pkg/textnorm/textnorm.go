// Package textnorm folds European diacritics for accent-insensitive identity comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// folds maps lower-case runes to their closest ASCII spelling.
var folds = map[rune]string{
	// German
	'ä': "ae", 'ö': "oe", 'ü': "ue", 'ß': "ss",
	// Scandinavian
	'å': "aa", 'æ': "ae", 'ø': "oe",
	// Polish
	'ą': "a", 'ć': "c", 'ę': "e", 'ł': "l", 'ń': "n", 'ś': "s", 'ź': "z", 'ż': "z",
	// Czech / Slovak
	'č': "c", 'ď': "d", 'ě': "e", 'ň': "n", 'ř': "r", 'š': "s", 'ť': "t", 'ů': "u", 'ž': "z",
	'ľ': "l", 'ĺ': "l", 'ŕ': "r",
	// Hungarian
	'ő': "o", 'ű': "u",
	// Turkish
	'ç': "c", 'ğ': "g", 'ı': "i", 'ş': "s",
	// Romanian
	'ă': "a", 'ș': "s", 'ț': "t", 'ţ': "t",
	// Romance
	'á': "a", 'à': "a", 'â': "a", 'ã': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'õ': "o",
	'ú': "u", 'ù': "u", 'û': "u",
	'ñ': "n", 'ý': "y", 'ÿ': "y",
	// Croatian / Slovenian
	'đ': "d",
	// Icelandic
	'ð': "d", 'þ': "th",
	// Ligature
	'œ': "oe",
}

// dottedCapitalI is Turkish "İ". Lower-casing it yields "i" plus a combining dot,
// so it is replaced by a plain "I" first.
var dottedCapitalI = strings.NewReplacer("\u0130", "I")

const combiningDotAbove = '\u0307'

// Normalize returns the identity-key form of s: lower-cased, diacritics folded,
// whitespace collapsed and trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = cases.Lower(language.Und).String(dottedCapitalI.Replace(norm.NFC.String(s)))
	var b strings.Builder
	b.Grow(len(s))
	fold(&b, s, false)
	return collapse(b.String())
}

// NormalizeDisplay folds diacritics like Normalize but keeps the original casing,
// so "Jörg Öztürk" becomes "Joerg Oeztuerk".
func NormalizeDisplay(s string) string {
	s = dottedCapitalI.Replace(norm.NFC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	fold(&b, s, true)
	return collapse(b.String())
}

func fold(b *strings.Builder, s string, keepCase bool) {
	var prev rune
	for _, r := range s {
		if r == combiningDotAbove && (prev == 'i' || prev == 'I') {
			continue
		}
		prev = r
		lr := unicode.ToLower(r)
		repl, ok := folds[lr]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if keepCase && lr != r {
			b.WriteString(upperFirst(repl, r == 'ẞ'))
			continue
		}
		b.WriteString(repl)
	}
}

// upperFirst capitalises a replacement for an upper-case source rune ("ae" -> "Ae").
// Sharp s has no title-case form and is written fully upper-case.
func upperFirst(repl string, full bool) string {
	if full {
		return strings.ToUpper(repl)
	}
	return strings.ToUpper(repl[:1]) + repl[1:]
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
