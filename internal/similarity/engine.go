package similarity

import (
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/logger"
)

// Engine owns one precomputed model and scores queries against it. It is
// safe for concurrent Score calls: the model state is read-only after
// construction and each call gets its own accumulator.
type Engine struct {
	kind       Kind
	model      Model
	numDocs    int
	numTerms   int
	precompute time.Duration
	logger     *slog.Logger
}

// NewEngine builds the model for kind against table and precomputes it.
// It fails with ErrEmptyCorpus when the table has no documents.
func NewEngine(kind Kind, table *postings.Table, params Params) (*Engine, error) {
	model, err := New(kind, table, params)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		kind:     kind,
		model:    model,
		numDocs:  table.NumDocs(),
		numTerms: len(table.Terms()),
		logger:   logger.WithComponent("similarity"),
	}
	start := time.Now()
	model.PrecomputeNorms()
	e.precompute = time.Since(start)
	e.logger.Info("similarity model ready",
		"model", kind,
		"docs", e.numDocs,
		"terms", e.numTerms,
		"k1", params.K1,
		"b", params.B,
		"bm25_normalize", params.BM25Normalize,
		"precompute_ms", e.precompute.Milliseconds(),
	)
	return e, nil
}

// Score returns the similarity of every document sharing at least one term
// with q. The result is not sorted or truncated.
func (e *Engine) Score(q Query) Scores {
	acc := make(Scores)
	e.model.AccumulateScores(acc, q)
	return acc
}

func (e *Engine) Kind() Kind { return e.kind }

func (e *Engine) Model() Model { return e.model }

func (e *Engine) NumDocs() int { return e.numDocs }

// PrecomputeDuration is how long PrecomputeNorms took at construction.
func (e *Engine) PrecomputeDuration() time.Duration { return e.precompute }

// Norm returns the document norm the model divides by (BM25 computes it
// even when it does not use it).
func (e *Engine) Norm(doc string) float64 {
	if n, ok := e.model.(interface{ Norm(string) float64 }); ok {
		return n.Norm(doc)
	}
	return 0
}
