package cache

import (
	"context"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/resilience"
)

// GuardedStore bounds every call to the underlying store with a timeout
// and stops calling it while the circuit is open. Key misses do not count
// as failures.
type GuardedStore struct {
	next    Store
	breaker *resilience.Breaker
	timeout time.Duration
}

func NewGuardedStore(next Store, timeout time.Duration, threshold int, reset time.Duration) *GuardedStore {
	return &GuardedStore{
		next:    next,
		timeout: timeout,
		breaker: resilience.NewBreaker("result-cache", resilience.BreakerConfig{
			FailureThreshold: threshold,
			ResetTimeout:     reset,
			IsFailure: func(err error) bool {
				return err != nil && !pkgredis.IsNilError(err)
			},
		}),
	}
}

func (g *GuardedStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := g.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, g.timeout, "cache get", func(ctx context.Context) error {
			var err error
			val, err = g.next.Get(ctx, key)
			return err
		})
	})
	return val, err
}

func (g *GuardedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, g.timeout, "cache set", func(ctx context.Context) error {
			return g.next.Set(ctx, key, value, ttl)
		})
	})
}

// FlushByPattern bypasses the breaker so an operator can always clear the
// cache.
func (g *GuardedStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	return g.next.FlushByPattern(ctx, pattern)
}

func (g *GuardedStore) State() resilience.State { return g.breaker.State() }
