package similarity

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor calls fn(i) for every i in [0, n), splitting the range into
// contiguous chunks across at most workers goroutines. fn must only write
// state owned by index i.
func parallelFor(n, workers int, fn func(i int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func sqrtOrZero(sumSquares float64) float64 {
	if sumSquares <= 0 {
		return 0
	}
	return math.Sqrt(sumSquares)
}
