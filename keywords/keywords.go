// Package keywords ranks the most frequent content words of a text.
package keywords

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dhcgn/email-features/textclean"
)

// ErrInvalidCount is returned when a negative keyword count is requested.
var ErrInvalidCount = errors.New("keyword count must not be negative")

// minTokenLength is the shortest token that counts as a keyword.
const minTokenLength = 3

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// Count is a keyword with its number of occurrences.
type Count struct {
	Word  string
	Count int
}

// IsStopWord reports whether word is excluded from keyword counting.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Top returns the n most frequent keywords of text. Keywords with equal
// frequency keep the order in which they first appear in the text.
func Top(text string, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	counts := Counts(text)
	if n > len(counts) {
		n = len(counts)
	}

	words := make([]string, 0, n)
	for _, c := range counts[:n] {
		words = append(words, c.Word)
	}
	return words, nil
}

// Counts returns every keyword of text ranked by frequency, ties broken by
// first occurrence.
func Counts(text string) []Count {
	var ranked []Count
	index := make(map[string]int)

	for _, token := range strings.Fields(textclean.Normalize(text)) {
		if IsStopWord(token) || utf8.RuneCountInString(token) < minTokenLength {
			continue
		}
		if i, ok := index[token]; ok {
			ranked[i].Count++
			continue
		}
		index[token] = len(ranked)
		ranked = append(ranked, Count{Word: token, Count: 1})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}
