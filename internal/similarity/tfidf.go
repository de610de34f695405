package similarity

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
)

// TFIDF is cosine similarity over idf-weighted counts:
//
//	idf(t)   = ln(N / df(t))
//	norm[d]  = sqrt(sum_t (tf(d,t) * idf(t))^2)
//	score[d] = sum_t qf(t) * idf(t) * tf(d,t) * idf(t) / norm[d]
//
// A term that occurs in every document has idf 0, so a document made only
// of such terms has norm 0 and scores 0.
type TFIDF struct {
	cosine
	idf map[string]float64
}

var _ Model = (*TFIDF)(nil)

func NewTFIDF(table *postings.Table, params Params) (*TFIDF, error) {
	base, err := newCosine(table, params)
	if err != nil {
		return nil, err
	}
	return &TFIDF{
		cosine: base,
		idf:    make(map[string]float64),
	}, nil
}

// tfidfIDF is ln(N/df). df >= 1 for every corpus term.
func tfidfIDF(n, df int) float64 {
	return math.Log(float64(n) / float64(df))
}

func (m *TFIDF) PrecomputeNorms() {
	if m.ready {
		return
	}
	m.idf = m.computeIDF(tfidfIDF)
	m.computeNorms(func(_, term string, tf int) float64 {
		return float64(tf) * m.idf[term]
	})
	m.ready = true
}

// IDF returns idf(term), or 0 for a term outside the corpus.
func (m *TFIDF) IDF(term string) float64 {
	return m.idf[term]
}

func (m *TFIDF) AccumulateScores(acc Scores, q Query) {
	m.mustBeReady()
	for _, term := range q.sortedTerms() {
		qf := float64(q[term])
		idf := m.idf[term]
		for doc, tf := range m.table.TermDocs(term) {
			norm := m.norms[doc]
			if norm == 0 {
				continue
			}
			acc[doc] += qf * idf * (float64(tf) * idf) / norm
		}
	}
}
