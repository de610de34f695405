// Package corpus builds a postings table from a directory of documents.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/logger"
)

// Analyzer turns document text into terms.
type Analyzer interface {
	Terms(text string) []string
}

// IndexDirectory walks dir and indexes every regular file as one document
// whose ID is the file's base name. Hidden files and directories are
// skipped. Files are read and analysed by up to workers goroutines
// (GOMAXPROCS when workers <= 0).
func IndexDirectory(ctx context.Context, dir string, analyzer Analyzer, workers int) (*postings.Table, error) {
	log := logger.WithComponent("corpus")
	start := time.Now()

	paths, err := listDocuments(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no documents under %s", apperrors.ErrEmptyCorpus, dir)
	}
	if err := checkUniqueIDs(paths); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	builder := postings.NewBuilder()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading document %s: %w", path, err)
			}
			builder.AddDocument(DocumentID(path), analyzer.Terms(string(data)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building postings: %w", err)
	}
	log.Info("corpus indexed",
		"dir", dir,
		"docs", table.NumDocs(),
		"terms", len(table.Terms()),
		"tokens", builder.TokenCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// DocumentID is the base name of path.
func DocumentID(path string) string {
	return filepath.Base(path)
}

func listDocuments(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && len(name) > 0 && name[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus directory %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func checkUniqueIDs(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		id := DocumentID(path)
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: document ID %q used by %s and %s", apperrors.ErrInvalidInput, id, prev, path)
		}
		seen[id] = path
	}
	return nil
}
