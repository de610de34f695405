package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/preprocess"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/metrics"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *mapStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = string(value)
	return nil
}

func (s *mapStore) FlushByPattern(_ context.Context, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.data))
	s.data = make(map[string]string)
	return n, nil
}

func newServer(t *testing.T, withCache bool) (*http.ServeMux, *metrics.Metrics) {
	t.Helper()
	pp, err := preprocess.New(preprocess.DefaultOptions())
	require.NoError(t, err)
	table, err := postings.New(map[string]map[string]int{
		"d1": pp.Counts("cat sat mat"),
		"d2": pp.Counts("cat cat dog"),
		"d3": pp.Counts("dog barks"),
	})
	require.NoError(t, err)
	engine, err := similarity.NewEngine(similarity.KindBM25, table, similarity.DefaultParams())
	require.NoError(t, err)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	var qc *cache.QueryCache
	if withCache {
		qc = cache.New(&mapStore{data: make(map[string]string)}, time.Minute, m)
	}
	mux := http.NewServeMux()
	New(searcher.New(pp, engine), qc, m, 10, 2).Routes(mux)
	return mux, m
}

func do(t *testing.T, mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestSearch(t *testing.T) {
	mux, m := newServer(t, false)
	rec := do(t, mux, http.MethodGet, "/api/v1/search?q=dog")
	require.Equal(t, http.StatusOK, rec.Code)

	var res searcher.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "BM25", res.Model)
	assert.Equal(t, 2, res.TotalHits)
	require.Len(t, res.Results, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("BM25", "ok")))
}

func TestSearchLimitIsCapped(t *testing.T) {
	mux, _ := newServer(t, false)
	rec := do(t, mux, http.MethodGet, "/api/v1/search?q=cat+dog&limit=50")
	require.Equal(t, http.StatusOK, rec.Code)

	var res searcher.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.TotalHits)
	assert.Len(t, res.Results, 2)
}

func TestSearchBadRequests(t *testing.T) {
	mux, _ := newServer(t, false)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/v1/search").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/v1/search?q=cat&limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/v1/search?q=cat&limit=x").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodPost, "/api/v1/search?q=cat").Code)
}

func TestSearchZeroResult(t *testing.T) {
	mux, m := newServer(t, false)
	rec := do(t, mux, http.MethodGet, "/api/v1/search?q=unicorn")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("BM25", "zero_result")))
}

func TestSearchCached(t *testing.T) {
	mux, _ := newServer(t, true)
	first := do(t, mux, http.MethodGet, "/api/v1/search?q=dog")
	second := do(t, mux, http.MethodGet, "/api/v1/search?q=DOG")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(do(t, mux, http.MethodGet, "/api/v1/cache/stats").Body.Bytes(), &stats))
	assert.Equal(t, 1.0, stats["hits"])
	assert.Equal(t, 1.0, stats["misses"])
	assert.Equal(t, "50.0%", stats["hit_rate"])

	rec := do(t, mux, http.MethodPost, "/api/v1/cache/invalidate")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"keys_deleted":1`)
}

func TestSearchCachedEchoesCallerQuery(t *testing.T) {
	mux, _ := newServer(t, true)
	require.Equal(t, http.StatusOK, do(t, mux, http.MethodGet, "/api/v1/search?q=dog").Code)
	rec := do(t, mux, http.MethodGet, "/api/v1/search?q=DOG")
	require.Equal(t, http.StatusOK, rec.Code)

	var res searcher.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "DOG", res.Query)
	assert.Equal(t, 2, res.TotalHits)
}

func TestCacheDisabled(t *testing.T) {
	mux, _ := newServer(t, false)
	rec := do(t, mux, http.MethodGet, "/api/v1/cache/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, mux, http.MethodPost, "/api/v1/cache/invalidate").Code)
}

func TestHealth(t *testing.T) {
	mux, _ := newServer(t, false)
	rec := do(t, mux, http.MethodGet, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","model":"BM25"}`, rec.Body.String())
}
