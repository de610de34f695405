package preprocess

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

// Options selects the pipeline stages.
type Options struct {
	// Tokenizer is "punct" or "whitespace".
	Tokenizer string
	// Stemmer is "porter", "suffix" or "none".
	Stemmer   string
	StopWords bool
	// CacheSize bounds the stem cache.
	CacheSize int
}

// DefaultOptions is word/punctuation tokenisation, Porter stemming and 10000
// cached stems.
func DefaultOptions() Options {
	return Options{
		Tokenizer: "punct",
		Stemmer:   "porter",
		CacheSize: 10000,
	}
}

// Preprocessor tokenises, optionally drops stop words, and stems.
type Preprocessor struct {
	tokenize  Tokenizer
	stem      *CachedStemmer
	stopWords bool
}

func New(opts Options) (*Preprocessor, error) {
	var tokenize Tokenizer
	switch opts.Tokenizer {
	case "", "punct":
		tokenize = PunctTokenize
	case "whitespace":
		tokenize = WhitespaceTokenize
	default:
		return nil, fmt.Errorf("%w: unknown tokenizer %q", apperrors.ErrInvalidConfig, opts.Tokenizer)
	}

	var stemmer Stemmer
	switch opts.Stemmer {
	case "", "porter":
		stemmer = PorterStemmer
	case "suffix":
		stemmer = SuffixStemmer
	case "none":
		stemmer = IdentityStemmer
	default:
		return nil, fmt.Errorf("%w: unknown stemmer %q", apperrors.ErrInvalidConfig, opts.Stemmer)
	}

	size := opts.CacheSize
	if size <= 0 {
		size = DefaultOptions().CacheSize
	}
	cached, err := NewCachedStemmer(stemmer, size)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{
		tokenize:  tokenize,
		stem:      cached,
		stopWords: opts.StopWords,
	}, nil
}

// Terms returns the normalised terms of text in order of appearance.
func (p *Preprocessor) Terms(text string) []string {
	tokens := p.tokenize(text)
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if p.stopWords && isStopWord(tok) {
			continue
		}
		if term := p.stem.Stem(tok); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Counts returns term -> occurrences for text, the shape a query vector
// takes.
func (p *Preprocessor) Counts(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range p.Terms(text) {
		counts[term]++
	}
	return counts
}

// CacheStats reports stem cache hits and misses.
func (p *Preprocessor) CacheStats() (hits, misses int64) {
	return p.stem.Stats()
}
