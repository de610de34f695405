package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings/segment"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/preprocess"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/ranking"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/trec"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/metrics"
)

func newPreprocessor(c *config.Config) (*preprocess.Preprocessor, error) {
	return preprocess.New(preprocess.Options{
		Tokenizer: c.Preprocess.Tokenizer,
		Stemmer:   c.Preprocess.Stemmer,
		StopWords: c.Preprocess.StopWords,
		CacheSize: c.Preprocess.StemCacheSize,
	})
}

// buildIndex indexes the corpus directory and writes the snapshot.
func buildIndex(ctx context.Context, c *config.Config, pp *preprocess.Preprocessor) (*postings.Table, error) {
	table, err := corpus.IndexDirectory(ctx, c.Index.CorpusDir, pp, c.Index.Workers)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(c.Index.SnapshotPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot dir: %w", err)
		}
	}
	if err := segment.Write(c.Index.SnapshotPath, table); err != nil {
		return nil, err
	}
	slog.Info("snapshot written", "path", c.Index.SnapshotPath, "docs", table.NumDocs(), "terms", len(table.Terms()))
	return table, nil
}

// loadTable reads the snapshot when useStored is set and one exists,
// otherwise it rebuilds from the corpus.
func loadTable(ctx context.Context, c *config.Config, pp *preprocess.Preprocessor) (*postings.Table, error) {
	if c.Index.UseStored {
		table, err := segment.Read(c.Index.SnapshotPath)
		switch {
		case err == nil:
			slog.Info("snapshot loaded", "path", c.Index.SnapshotPath, "docs", table.NumDocs())
			return table, nil
		case errors.Is(err, fs.ErrNotExist):
			slog.Info("no snapshot found, indexing corpus", "path", c.Index.SnapshotPath)
		default:
			return nil, err
		}
	}
	return buildIndex(ctx, c, pp)
}

func newEngine(c *config.Config, table *postings.Table, m *metrics.Metrics) (*similarity.Engine, error) {
	kind, err := similarity.ParseKind(c.Similarity.Model)
	if err != nil {
		return nil, err
	}
	engine, err := similarity.NewEngine(kind, table, similarity.Params{
		K1:            c.Similarity.K1,
		B:             c.Similarity.B,
		Workers:       c.Similarity.Workers,
		BM25Normalize: c.Similarity.BM25Normalize,
	})
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.PrecomputeSeconds.WithLabelValues(string(kind)).Set(engine.PrecomputeDuration().Seconds())
		m.CorpusDocuments.Set(float64(table.NumDocs()))
		m.CorpusTerms.Set(float64(len(table.Terms())))
	}
	return engine, nil
}

// runTopics scores every topic and writes one run block per topic. limit
// <= 0 writes every scored document.
func runTopics(ctx context.Context, w io.Writer, topics []trec.Topic, pp *preprocess.Preprocessor, engine *similarity.Engine, tag string, limit int) (int, error) {
	rw := trec.NewRunWriter(w, tag)
	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return rw.Lines(), err
		}
		scores := engine.Score(similarity.Query(pp.Counts(topic.Text)))
		if err := rw.Write(topic.ID, ranking.Rank(scores, limit)); err != nil {
			return rw.Lines(), err
		}
	}
	if err := rw.Flush(); err != nil {
		return rw.Lines(), err
	}
	return rw.Lines(), nil
}
