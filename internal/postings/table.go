// Package postings holds the term/document occurrence table the similarity
// models score against. A Table keeps two views of the same counts,
// doc -> term -> count and term -> doc -> count, and is immutable once built.
package postings

import (
	"fmt"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

// Table is an immutable postings snapshot. Zero counts are not stored, and
// a missing entry reads as zero. Documents without any terms are still
// members of the corpus.
type Table struct {
	docTerms map[string]map[string]int
	termDocs map[string]map[string]int
	docs     []string
	terms    []string
	docLen   map[string]int
	sorted   map[string][]string
}

// New builds a Table from the document view and derives its transpose. The
// input maps are copied.
func New(docTerms map[string]map[string]int) (*Table, error) {
	t := &Table{
		docTerms: make(map[string]map[string]int, len(docTerms)),
		termDocs: make(map[string]map[string]int),
	}
	for doc, counts := range docTerms {
		row := make(map[string]int, len(counts))
		for term, count := range counts {
			if count < 0 {
				return nil, fmt.Errorf("%w: doc %q term %q count %d", apperrors.ErrNegativeCount, doc, term, count)
			}
			if count == 0 {
				continue
			}
			row[term] = count
			col, ok := t.termDocs[term]
			if !ok {
				col = make(map[string]int)
				t.termDocs[term] = col
			}
			col[doc] = count
		}
		t.docTerms[doc] = row
	}
	t.finish()
	return t, nil
}

// FromViews builds a Table from both views, as a postings store would hand
// them over, and checks that one is exactly the transpose of the other.
func FromViews(docTerms, termDocs map[string]map[string]int) (*Table, error) {
	t, err := New(docTerms)
	if err != nil {
		return nil, err
	}
	for term, docs := range termDocs {
		for doc, count := range docs {
			if count < 0 {
				return nil, fmt.Errorf("%w: term %q doc %q count %d", apperrors.ErrNegativeCount, term, doc, count)
			}
			if t.Count(doc, term) != count {
				return nil, fmt.Errorf("%w: count(%q,%q) is %d in the term view and %d in the document view",
					apperrors.ErrInconsistentPostings, doc, term, count, t.Count(doc, term))
			}
		}
	}
	for term, docs := range t.termDocs {
		for doc := range docs {
			if _, ok := termDocs[term][doc]; !ok {
				return nil, fmt.Errorf("%w: term view is missing (%q,%q)", apperrors.ErrInconsistentPostings, doc, term)
			}
		}
	}
	return t, nil
}

func (t *Table) finish() {
	t.docs = make([]string, 0, len(t.docTerms))
	t.docLen = make(map[string]int, len(t.docTerms))
	t.sorted = make(map[string][]string, len(t.docTerms))
	for doc, row := range t.docTerms {
		t.docs = append(t.docs, doc)
		terms := make([]string, 0, len(row))
		length := 0
		for term, count := range row {
			terms = append(terms, term)
			length += count
		}
		sort.Strings(terms)
		t.sorted[doc] = terms
		t.docLen[doc] = length
	}
	sort.Strings(t.docs)
	t.terms = make([]string, 0, len(t.termDocs))
	for term := range t.termDocs {
		t.terms = append(t.terms, term)
	}
	sort.Strings(t.terms)
}

// NumDocs is N, the number of documents in the corpus.
func (t *Table) NumDocs() int { return len(t.docs) }

// Documents returns every document ID in ascending order. Callers must not
// modify the slice.
func (t *Table) Documents() []string { return t.docs }

// Terms returns every term in ascending order. Callers must not modify the
// slice.
func (t *Table) Terms() []string { return t.terms }

// DocTerms returns term -> count for doc, or nil for an unknown document.
// The map is shared and must be treated as read-only.
func (t *Table) DocTerms(doc string) map[string]int { return t.docTerms[doc] }

// SortedDocTerms returns the terms of doc in ascending order.
func (t *Table) SortedDocTerms(doc string) []string { return t.sorted[doc] }

// TermDocs returns doc -> count for term, or nil for a term absent from the
// corpus. The map is shared and must be treated as read-only.
func (t *Table) TermDocs(term string) map[string]int { return t.termDocs[term] }

func (t *Table) Count(doc, term string) int { return t.docTerms[doc][term] }

// DocumentFrequency is the number of documents containing term.
func (t *Table) DocumentFrequency(term string) int { return len(t.termDocs[term]) }

// DocLength is the sum of term counts in doc.
func (t *Table) DocLength(doc string) int { return t.docLen[doc] }
