package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

type fieldsAnalyzer struct{}

func (fieldsAnalyzer) Terms(text string) []string { return strings.Fields(text) }

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func TestIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc1":        "cat sat mat",
		"nested/doc2": "cat cat dog",
		"empty":       "",
		".hidden":     "secret",
		".git/config": "ignored",
	})

	table, err := IndexDirectory(context.Background(), dir, fieldsAnalyzer{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1", "doc2", "empty"}, table.Documents())
	assert.Equal(t, 2, table.Count("doc2", "cat"))
	assert.Equal(t, 0, table.DocLength("empty"))
	assert.Nil(t, table.TermDocs("secret"))
}

func TestIndexDirectoryEmpty(t *testing.T) {
	_, err := IndexDirectory(context.Background(), t.TempDir(), fieldsAnalyzer{}, 1)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCorpus)
}

func TestIndexDirectoryDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a/doc": "x", "b/doc": "y"})
	_, err := IndexDirectory(context.Background(), dir, fieldsAnalyzer{}, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIndexDirectoryMissing(t *testing.T) {
	_, err := IndexDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), fieldsAnalyzer{}, 1)
	assert.Error(t, err)
}

func TestIndexDirectoryCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a": "x", "b": "y"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := IndexDirectory(ctx, dir, fieldsAnalyzer{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
