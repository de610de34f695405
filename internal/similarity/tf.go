package similarity

import (
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
)

// TF is cosine similarity over raw term counts:
//
//	norm[d]  = sqrt(sum_t tf(d,t)^2)
//	score[d] = sum_t qf(t) * tf(d,t) / norm[d]
type TF struct {
	cosine
}

var _ Model = (*TF)(nil)

func NewTF(table *postings.Table, params Params) (*TF, error) {
	base, err := newCosine(table, params)
	if err != nil {
		return nil, err
	}
	return &TF{cosine: base}, nil
}

func (m *TF) PrecomputeNorms() {
	if m.ready {
		return
	}
	m.computeNorms(func(_, _ string, tf int) float64 {
		return float64(tf)
	})
	m.ready = true
}

func (m *TF) AccumulateScores(acc Scores, q Query) {
	m.mustBeReady()
	for _, term := range q.sortedTerms() {
		qf := float64(q[term])
		for doc, tf := range m.table.TermDocs(term) {
			norm := m.norms[doc]
			if norm == 0 {
				continue
			}
			acc[doc] += qf * float64(tf) / norm
		}
	}
}
