// Package similarity scores documents against a query vector under one of
// three cosine-style relevance models: raw term frequency (TF), TF-IDF and
// Okapi BM25.
//
// Every model derives its per-document and per-term state from a
// postings.Table exactly once, in PrecomputeNorms, and then answers any
// number of queries through AccumulateScores without touching that state.
// The engine returns unsorted document -> score maps; ranking and output
// formatting belong to the caller.
package similarity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

// Query maps a term to its frequency in one query. Terms with a
// non-positive frequency are ignored.
type Query map[string]int

// Scores maps a document to its accumulated similarity. A document missing
// from the map scores 0.
type Scores map[string]float64

// Model is the contract shared by the three relevance models.
type Model interface {
	// PrecomputeNorms derives the model's document norms and term weights
	// from its table. Calling it again is a no-op.
	PrecomputeNorms()
	// AccumulateScores adds, for every query term with frequency > 0, one
	// contribution to acc[d] for each document d containing that term.
	// It panics if PrecomputeNorms has not run.
	AccumulateScores(acc Scores, q Query)
}

// Kind names one of the relevance models.
type Kind string

const (
	KindTF    Kind = "TF"
	KindTFIDF Kind = "TFIDF"
	KindBM25  Kind = "BM25"
)

// ParseKind accepts a model name in any letter case.
func ParseKind(name string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(name))) {
	case KindTF:
		return KindTF, nil
	case KindTFIDF:
		return KindTFIDF, nil
	case KindBM25:
		return KindBM25, nil
	}
	return "", fmt.Errorf("%w: %q (want TF, TFIDF or BM25)", apperrors.ErrUnknownModel, name)
}

// Params carries the tunables of the models.
type Params struct {
	// K1 is the BM25 term-frequency saturation constant.
	K1 float64
	// B is the BM25 length-normalisation constant.
	B float64
	// Workers bounds the goroutines used while precomputing; <= 0 means
	// GOMAXPROCS.
	Workers int
	// BM25Normalize makes BM25 multiply by the query frequency and divide
	// by the document norm at scoring time, as TF and TF-IDF do. When
	// false a BM25 score is the plain sum of w(d,t) over query terms.
	BM25Normalize bool
}

// DefaultParams returns k1 = 2.0, b = 0.75 and literal BM25 scoring.
func DefaultParams() Params {
	return Params{K1: 2.0, B: 0.75}
}

// New constructs the model for kind against table. The model still needs
// PrecomputeNorms before it can score.
func New(kind Kind, table *postings.Table, params Params) (Model, error) {
	switch kind {
	case KindTF:
		return NewTF(table, params)
	case KindTFIDF:
		return NewTFIDF(table, params)
	case KindBM25:
		return NewBM25(table, params)
	}
	return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownModel, string(kind))
}

// sortedTerms fixes the accumulation order so that repeated runs, and
// separately built engines, add floating-point contributions identically.
func (q Query) sortedTerms() []string {
	terms := make([]string, 0, len(q))
	for term, qf := range q {
		if qf > 0 {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms
}

// String renders q canonically as "term:qf" pairs in term order, so equal
// queries render identically.
func (q Query) String() string {
	terms := q.sortedTerms()
	parts := make([]string, len(terms))
	for i, term := range terms {
		parts[i] = term + ":" + strconv.Itoa(q[term])
	}
	return strings.Join(parts, ",")
}

// cosine is the state every model shares: the table it was built against
// and one norm per document.
type cosine struct {
	table  *postings.Table
	params Params
	norms  map[string]float64
	ready  bool
}

func newCosine(table *postings.Table, params Params) (cosine, error) {
	if table == nil || table.NumDocs() == 0 {
		return cosine{}, fmt.Errorf("%w: cannot build a similarity model over zero documents", apperrors.ErrEmptyCorpus)
	}
	return cosine{
		table:  table,
		params: params,
		norms:  make(map[string]float64),
	}, nil
}

// Norm returns the precomputed norm of doc, or 0 for an unknown document.
func (c *cosine) Norm(doc string) float64 {
	return c.norms[doc]
}

// Ready reports whether PrecomputeNorms has run.
func (c *cosine) Ready() bool {
	return c.ready
}

func (c *cosine) mustBeReady() {
	if !c.ready {
		panic(fmt.Errorf("%w: call PrecomputeNorms first", apperrors.ErrNotPrecomputed))
	}
}

// computeNorms sets norm[d] = sqrt(sum of weight(d,t)^2) over the terms of
// d, visiting terms in sorted order.
func (c *cosine) computeNorms(weight func(doc, term string, tf int) float64) {
	docs := c.table.Documents()
	out := make([]float64, len(docs))
	parallelFor(len(docs), c.params.Workers, func(i int) {
		doc := docs[i]
		row := c.table.DocTerms(doc)
		var sum float64
		for _, term := range c.table.SortedDocTerms(doc) {
			w := weight(doc, term, row[term])
			sum += w * w
		}
		out[i] = sqrtOrZero(sum)
	})
	norms := make(map[string]float64, len(docs))
	for i, doc := range docs {
		norms[doc] = out[i]
	}
	c.norms = norms
}

// computeIDF evaluates idf(N, df) once per corpus term.
func (c *cosine) computeIDF(idf func(n, df int) float64) map[string]float64 {
	terms := c.table.Terms()
	n := c.table.NumDocs()
	out := make([]float64, len(terms))
	parallelFor(len(terms), c.params.Workers, func(i int) {
		out[i] = idf(n, c.table.DocumentFrequency(terms[i]))
	})
	table := make(map[string]float64, len(terms))
	for i, term := range terms {
		table[term] = out[i]
	}
	return table
}
