package similarity

import (
	"fmt"
	"testing"
)

func BenchmarkPrecompute(b *testing.B) {
	table := syntheticCorpus(b, 5000)
	for _, kind := range allKinds {
		b.Run(string(kind), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := NewEngine(kind, table, DefaultParams()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScore(b *testing.B) {
	table := syntheticCorpus(b, 5000)
	query := Query{}
	for j := 0; j < 5; j++ {
		query[fmt.Sprintf("t%d", j*4)] = 1
	}
	for _, kind := range allKinds {
		engine, err := NewEngine(kind, table, DefaultParams())
		if err != nil {
			b.Fatal(err)
		}
		b.Run(string(kind), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = engine.Score(query)
			}
		})
	}
}
