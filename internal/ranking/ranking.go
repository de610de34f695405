// Package ranking orders engine scores into a result list. Ties are broken
// by ascending document ID so runs are reproducible.
package ranking

import (
	"container/heap"
	"sort"
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// less reports whether a ranks above b.
func less(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

// Rank returns the documents of scores ordered by descending score. When
// limit > 0 only the top limit documents are kept.
func Rank(scores map[string]float64, limit int) []ScoredDoc {
	if limit > 0 && limit < len(scores) {
		return topK(scores, limit)
	}
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(result, func(i, j int) bool {
		return less(result[i], result[j])
	})
	return result
}

func topK(scores map[string]float64, k int) []ScoredDoc {
	h := &scoredDocHeap{}
	heap.Init(h)
	for docID, score := range scores {
		heap.Push(h, ScoredDoc{DocID: docID, Score: score})
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result
}

// scoredDocHeap is a min-heap on rank: the root is the worst kept document.
type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return less(h[j], h[i]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
