// Package textclean holds the text normalizers applied to subjects and bodies
// before keyword counting or model training.
package textclean

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// punctuation is the ASCII punctuation set removed by NormalizeStrict.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	digitPattern = regexp.MustCompile(`\p{Nd}+`)
)

// Normalize lowercases text, replaces every rune that is not a letter, number,
// underscore or whitespace with a space and collapses whitespace runs.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lowered := lower(text)
	mapped := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)

	return strings.Join(strings.Fields(mapped), " ")
}

// NormalizeStrict is the preprocessing variant used for model input: it
// lowercases, drops HTML-style tags and digit runs, removes ASCII punctuation
// and trims surrounding whitespace. Inner whitespace is left as is.
func NormalizeStrict(text string) string {
	if text == "" {
		return ""
	}

	text = lower(text)
	text = tagPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text)

	return strings.TrimSpace(text)
}

// lower builds a fresh Caser per call; a Caser keeps state and must not be
// shared between goroutines.
func lower(text string) string {
	return cases.Lower(language.Und).String(text)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
