package trec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/ranking"
)

// RunWriter writes ranked results as
//
//	<query_id> Q0 <document_id> <rank> <score> <run_tag>
//
// one line per document, ranks counted from 0.
type RunWriter struct {
	w     *bufio.Writer
	tag   string
	lines int
}

func NewRunWriter(w io.Writer, tag string) *RunWriter {
	return &RunWriter{w: bufio.NewWriter(w), tag: tag}
}

func (rw *RunWriter) Write(queryID string, ranked []ranking.ScoredDoc) error {
	for rank, doc := range ranked {
		if _, err := fmt.Fprintf(rw.w, "%s Q0 %s %d %s %s\n",
			queryID, doc.DocID, rank, FormatScore(doc.Score), rw.tag); err != nil {
			return fmt.Errorf("writing run line for query %s: %w", queryID, err)
		}
		rw.lines++
	}
	return nil
}

// Lines is the number of run lines written so far.
func (rw *RunWriter) Lines() int { return rw.lines }

func (rw *RunWriter) Flush() error {
	return rw.w.Flush()
}

// FormatScore renders score in the shortest decimal form that parses back
// to the same float64.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
