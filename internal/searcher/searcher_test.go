package searcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/preprocess"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/similarity"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/tracing"
)

func newSearcher(t *testing.T, kind similarity.Kind) *Searcher {
	t.Helper()
	pp, err := preprocess.New(preprocess.DefaultOptions())
	require.NoError(t, err)
	table, err := postings.New(map[string]map[string]int{
		"d1": pp.Counts("cat sat mat"),
		"d2": pp.Counts("cat cat dog"),
	})
	require.NoError(t, err)
	engine, err := similarity.NewEngine(kind, table, similarity.DefaultParams())
	require.NoError(t, err)
	return New(pp, engine)
}

func TestSearchRanksByScore(t *testing.T) {
	s := newSearcher(t, similarity.KindTF)
	res, err := s.Search(context.Background(), "Cat!", 0)
	require.NoError(t, err)
	assert.Equal(t, "TF", res.Model)
	assert.Equal(t, 2, res.TotalHits)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "d2", res.Results[0].DocID)
	assert.InDelta(t, 0.894427, res.Results[0].Score, 1e-6)
	assert.Equal(t, "d1", res.Results[1].DocID)
	assert.InDelta(t, 0.577350, res.Results[1].Score, 1e-6)
}

func TestSearchLimit(t *testing.T) {
	s := newSearcher(t, similarity.KindTF)
	res, err := s.Search(context.Background(), "cat", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalHits)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "d2", res.Results[0].DocID)
}

func TestSearchNoTerms(t *testing.T) {
	s := newSearcher(t, similarity.KindBM25)
	res, err := s.Search(context.Background(), "?!", 10)
	require.NoError(t, err)
	assert.Zero(t, res.TotalHits)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)

	res, err = s.Search(context.Background(), "unicorn", 10)
	require.NoError(t, err)
	assert.Zero(t, res.TotalHits)
}

func TestSearchCancelled(t *testing.T) {
	s := newSearcher(t, similarity.KindTF)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, "cat", 10)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestCacheKey(t *testing.T) {
	s := newSearcher(t, similarity.KindTFIDF)
	assert.Equal(t, s.CacheKey("cat dog", 10), s.CacheKey("DOG, cat", 10))
	assert.NotEqual(t, s.CacheKey("cat dog", 10), s.CacheKey("cat cat dog", 10))
	assert.NotEqual(t, s.CacheKey("cat", 10), s.CacheKey("cat", 5))
	assert.Equal(t, "TFIDF|cat:1,dog:1|limit=10", s.CacheKey("cat dog", 10))
}

func TestSearchRecordsSpans(t *testing.T) {
	s := newSearcher(t, similarity.KindTF)
	ctx, root := tracing.StartSpan(context.Background(), "search", "req-1")
	_, err := s.Search(ctx, "cat", 10)
	require.NoError(t, err)

	var names []string
	for _, child := range root.Children() {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"preprocess", "score", "rank"}, names)
}
