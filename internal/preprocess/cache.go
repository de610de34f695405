package preprocess

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStemmer memoises another Stemmer in a fixed-capacity LRU keyed by
// the raw token. Stemming is a pure function, so eviction only costs time.
// Safe for concurrent use.
type CachedStemmer struct {
	next   Stemmer
	cache  *lru.Cache[string, string]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCachedStemmer(next Stemmer, capacity int) (*CachedStemmer, error) {
	cache, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating stem cache: %w", err)
	}
	return &CachedStemmer{next: next, cache: cache}, nil
}

func (c *CachedStemmer) Stem(token string) string {
	if stem, ok := c.cache.Get(token); ok {
		c.hits.Add(1)
		return stem
	}
	c.misses.Add(1)
	stem := c.next.Stem(token)
	c.cache.Add(token, stem)
	return stem
}

// Len is the number of cached stems.
func (c *CachedStemmer) Len() int {
	return c.cache.Len()
}

func (c *CachedStemmer) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
