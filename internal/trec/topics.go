// Package trec reads topic files and writes ranked runs in the format
// trec_eval consumes.
package trec

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Topic is one query from a topics file.
type Topic struct {
	ID   string
	Text string
}

// ReadTopics parses one topic per line. ASCII punctuation is replaced by
// spaces, the first remaining field is the topic ID and the rest is the
// query text. Blank lines are skipped.
func ReadTopics(r io.Reader) ([]Topic, error) {
	var topics []Topic
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(stripPunctuation(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		topics = append(topics, Topic{
			ID:   fields[0],
			Text: strings.Join(fields[1:], " "),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading topics at line %d: %w", lineNo+1, err)
	}
	return topics, nil
}

func stripPunctuation(line string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			return ' '
		}
		return r
	}, line)
}
