package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/tracing"
)

type Searcher interface {
	Search(ctx context.Context, text string, limit int) (*searcher.Result, error)
	CacheKey(text string, limit int) string
	Model() string
}

type Handler struct {
	searcher     Searcher
	cache        *cache.QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New builds the HTTP handler. queryCache and m may be nil.
func New(s Searcher, queryCache *cache.QueryCache, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		searcher:     s,
		cache:        queryCache,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       logger.WithComponent("search-handler"),
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", h.Health)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.StartSpan(r.Context(), "search", logger.RequestID(r.Context()))
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(log)
	}()

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	var result *searcher.Result
	var err error
	cacheHit := false

	if h.cache != nil {
		span.SetAttr("cached", true)
		result, cacheHit, err = h.cache.GetOrCompute(ctx, h.searcher.CacheKey(query, limit), func() (*searcher.Result, error) {
			return h.searcher.Search(ctx, query, limit)
		})
		if err == nil {
			// Cached results are shared across texts with the same term counts.
			echoed := *result
			echoed.Query = query
			result = &echoed
		}
	} else {
		result, err = h.searcher.Search(ctx, query, limit)
	}

	model := h.searcher.Model()
	if err != nil {
		h.observe(model, "error", cacheHit, start, 0)
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}

	resultType := "ok"
	if result.TotalHits == 0 {
		resultType = "zero_result"
	}
	h.observe(model, resultType, cacheHit, start, result.TotalHits)

	log.Info("search completed",
		"query", query,
		"model", model,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) observe(model, resultType string, cacheHit bool, start time.Time, hits int) {
	if h.metrics == nil {
		return
	}
	cacheStatus := "miss"
	switch {
	case h.cache == nil:
		cacheStatus = "disabled"
	case cacheHit:
		cacheStatus = "hit"
	}
	h.metrics.QueriesTotal.WithLabelValues(model, resultType).Inc()
	h.metrics.ScoringLatency.WithLabelValues(model, cacheStatus).Observe(time.Since(start).Seconds())
	if resultType != "error" {
		h.metrics.ResultsCount.WithLabelValues(model).Observe(float64(hits))
	}
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": h.searcher.Model()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
