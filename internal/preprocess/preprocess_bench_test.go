package preprocess

import (
	"fmt"
	"strings"
	"testing"
)

var benchTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Information retrieval systems rank documents by comparing a query vector
        with document vectors. Term frequency rewards repeated terms, inverse
        document frequency rewards rare ones, and BM25 saturates both while
        normalising for document length.`,
	"long": strings.Repeat(`Government web pages describe programs, regulations and
        services. Retrieval runs over such collections are judged against topic
        relevance assessments, so the tokenizer and stemmer must treat queries and
        documents identically. `, 20),
}

func BenchmarkPreprocess(b *testing.B) {
	p, err := New(DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	for name, text := range benchTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = p.Counts(text)
			}
		})
	}
}

func BenchmarkPreprocessParallel(b *testing.B) {
	p, err := New(DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	text := benchTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = p.Terms(text)
		}
	})
}

func BenchmarkStemmers(b *testing.B) {
	words := []string{
		"running", "retrieval", "searching", "indexing",
		"tokenization", "normalization", "efficiently",
		"processing", "relevance", "frequencies",
	}
	for name, s := range map[string]Stemmer{"porter": PorterStemmer, "suffix": SuffixStemmer} {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				for _, w := range words {
					_ = s.Stem(w)
				}
			}
		})
	}
}

func BenchmarkTokenizeVaryingSize(b *testing.B) {
	base := "relevance ranking with cosine similarity and okapi weighting "
	for _, size := range []int{10, 100, 1000, 10000} {
		text := strings.Repeat(base, size/len(base)+1)[:size]
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = PunctTokenize(text)
			}
		})
	}
}
