package postings

import (
	"sync"
)

// Builder accumulates per-document term counts, possibly from several
// goroutines, and produces an immutable Table.
type Builder struct {
	mu       sync.Mutex
	docTerms map[string]map[string]int
	tokens   int64
}

func NewBuilder() *Builder {
	return &Builder{
		docTerms: make(map[string]map[string]int),
	}
}

// AddDocument records the terms of one document. Adding an existing ID
// replaces its previous counts.
func (b *Builder) AddDocument(docID string, terms []string) {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.docTerms[docID]; ok {
		for _, c := range prev {
			b.tokens -= int64(c)
		}
	}
	b.docTerms[docID] = counts
	b.tokens += int64(len(terms))
}

func (b *Builder) DocCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.docTerms)
}

// TokenCount is the total number of term occurrences added so far.
func (b *Builder) TokenCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

// Build snapshots the accumulated documents into a Table. The builder can
// keep accepting documents afterwards without affecting the snapshot.
func (b *Builder) Build() (*Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return New(b.docTerms)
}
