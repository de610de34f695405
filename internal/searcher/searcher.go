// Package searcher answers free-text queries against a precomputed
// similarity engine: preprocess, score, rank.
package searcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/ranking"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/similarity"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/tracing"
)

// Analyzer turns query text into term counts. It must be the same pipeline
// the corpus was indexed with.
type Analyzer interface {
	Counts(text string) map[string]int
}

// Scorer is the read-only scoring surface of a similarity engine.
type Scorer interface {
	Score(q similarity.Query) similarity.Scores
	Kind() similarity.Kind
}

// Result is one ranked answer to a query.
type Result struct {
	Query     string              `json:"query"`
	Model     string              `json:"model"`
	TotalHits int                 `json:"total_hits"`
	Results   []ranking.ScoredDoc `json:"results"`
	LatencyMs int64               `json:"latency_ms"`
}

// Searcher is safe for concurrent use.
type Searcher struct {
	analyzer Analyzer
	scorer   Scorer
}

func New(analyzer Analyzer, scorer Scorer) *Searcher {
	return &Searcher{analyzer: analyzer, scorer: scorer}
}

// Model is the name of the similarity model queries are scored with.
func (s *Searcher) Model() string { return string(s.scorer.Kind()) }

// Search scores text against every document and returns the top limit
// documents. limit <= 0 returns all scored documents. A query with no
// usable terms yields an empty result, not an error.
func (s *Searcher) Search(ctx context.Context, text string, limit int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrTimeout, http.StatusGatewayTimeout, "search aborted: %v", err)
	}
	start := time.Now()
	_, span := tracing.StartChildSpan(ctx, "preprocess")
	counts := s.analyzer.Counts(text)
	span.SetAttr("terms", len(counts))
	span.End()
	result := &Result{
		Query:   text,
		Model:   s.Model(),
		Results: []ranking.ScoredDoc{},
	}
	if len(counts) == 0 {
		return result, nil
	}

	_, span = tracing.StartChildSpan(ctx, "score")
	scores := s.scorer.Score(similarity.Query(counts))
	span.SetAttr("hits", len(scores))
	span.End()

	_, span = tracing.StartChildSpan(ctx, "rank")
	result.TotalHits = len(scores)
	result.Results = ranking.Rank(scores, limit)
	span.End()
	result.LatencyMs = time.Since(start).Milliseconds()
	return result, nil
}

// CacheKey identifies a query for result caching. Two texts with the same
// term counts share a key.
func (s *Searcher) CacheKey(text string, limit int) string {
	q := similarity.Query(s.analyzer.Counts(text))
	return fmt.Sprintf("%s|%s|limit=%d", s.Model(), q.String(), limit)
}
