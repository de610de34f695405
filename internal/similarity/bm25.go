package similarity

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
)

// BM25 precomputes one Okapi weight per (document, term) pair:
//
//	idf(t)   = log10((N - df(t) + 0.5) / (df(t) + 0.5))
//	w(d,t)   = idf(t) * tf * (k1+1) / (tf + k1 * (1 - b + b*len(d)/avgdl))
//	norm[d]  = sqrt(sum_t w(d,t)^2)
//
// By default a document's score is the plain sum of w(d,t) over the query
// terms it contains; query frequency and norm are not applied. With
// Params.BM25Normalize the contribution becomes qf * w(d,t) / norm[d].
// idf is negative for terms in more than half the corpus.
type BM25 struct {
	cosine
	idf     map[string]float64
	docLen  map[string]int
	avgdl   float64
	weights map[string]map[string]float64
}

var _ Model = (*BM25)(nil)

func NewBM25(table *postings.Table, params Params) (*BM25, error) {
	base, err := newCosine(table, params)
	if err != nil {
		return nil, err
	}
	return &BM25{
		cosine:  base,
		idf:     make(map[string]float64),
		docLen:  make(map[string]int),
		weights: make(map[string]map[string]float64),
	}, nil
}

func bm25IDF(n, df int) float64 {
	return math.Log10((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
}

func (m *BM25) PrecomputeNorms() {
	if m.ready {
		return
	}
	m.idf = m.computeIDF(bm25IDF)

	docs := m.table.Documents()
	var total int
	for _, doc := range docs {
		l := m.table.DocLength(doc)
		m.docLen[doc] = l
		total += l
	}
	m.avgdl = float64(total) / float64(len(docs))

	rows := make([]map[string]float64, len(docs))
	parallelFor(len(docs), m.params.Workers, func(i int) {
		doc := docs[i]
		counts := m.table.DocTerms(doc)
		row := make(map[string]float64, len(counts))
		for term, tf := range counts {
			row[term] = m.weight(term, tf, m.docLen[doc])
		}
		rows[i] = row
	})
	for i, doc := range docs {
		m.weights[doc] = rows[i]
	}

	m.computeNorms(func(doc, term string, _ int) float64 {
		return m.weights[doc][term]
	})
	m.ready = true
}

func (m *BM25) weight(term string, tf, docLen int) float64 {
	if m.avgdl == 0 {
		return 0
	}
	k1, b := m.params.K1, m.params.B
	f := float64(tf)
	return m.idf[term] * f * (k1 + 1) / (f + k1*(1-b+b*float64(docLen)/m.avgdl))
}

// IDF returns idf(term), or 0 for a term outside the corpus.
func (m *BM25) IDF(term string) float64 {
	return m.idf[term]
}

// AvgDocLength is the mean number of term occurrences per document.
func (m *BM25) AvgDocLength() float64 {
	return m.avgdl
}

// Weight returns the precomputed w(doc, term), 0 when term is absent from
// doc.
func (m *BM25) Weight(doc, term string) float64 {
	return m.weights[doc][term]
}

func (m *BM25) AccumulateScores(acc Scores, q Query) {
	m.mustBeReady()
	for _, term := range q.sortedTerms() {
		qf := float64(q[term])
		for doc := range m.table.TermDocs(term) {
			w := m.weights[doc][term]
			if !m.params.BM25Normalize {
				acc[doc] += w
				continue
			}
			norm := m.norms[doc]
			if norm == 0 {
				continue
			}
			acc[doc] += qf * w / norm
		}
	}
}
