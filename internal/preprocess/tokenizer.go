// Package preprocess turns raw document and query text into normalised
// terms. Documents and queries must go through the same Preprocessor so
// that their terms line up in the postings table.
package preprocess

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits text into raw tokens.
type Tokenizer func(text string) []string

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// normalize applies NFKC and lower-cases.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// PunctTokenize segments text on UAX#29 word boundaries. Segments with no
// letter or digit (whitespace, punctuation runs) are dropped.
func PunctTokenize(text string) []string {
	segs := words.FromString(normalize(text))
	var tokens []string
	for segs.Next() {
		seg := segs.Value()
		if hasWordRune(seg) {
			tokens = append(tokens, seg)
		}
	}
	return tokens
}

// WhitespaceTokenize splits on Unicode whitespace only, so punctuation stays
// attached to its word.
func WhitespaceTokenize(text string) []string {
	return strings.Fields(normalize(text))
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
