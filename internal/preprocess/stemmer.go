package preprocess

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// Stemmer reduces a lower-cased token to its stem.
type Stemmer interface {
	Stem(token string) string
}

// StemmerFunc adapts a plain function to Stemmer.
type StemmerFunc func(token string) string

func (f StemmerFunc) Stem(token string) string { return f(token) }

// PorterStemmer is the English Snowball (Porter2) stemmer. Stop words are
// stemmed like any other token.
var PorterStemmer = StemmerFunc(func(token string) string {
	return english.Stem(token, true)
})

// IdentityStemmer leaves tokens untouched.
var IdentityStemmer = StemmerFunc(func(token string) string { return token })

// SuffixStemmer strips a fixed list of English suffixes. It is much cheaper
// than Porter and much cruder.
var SuffixStemmer = StemmerFunc(suffixStem)

var suffixRules = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

func suffixStem(word string) string {
	for _, rule := range suffixRules {
		if strings.HasSuffix(word, rule.suffix) {
			newWord := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(newWord) >= rule.minLen {
				return newWord
			}
		}
	}
	return word
}
