package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/resilience"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ranked search results over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port (overrides server.port)")
	serveCmd.Flags().String("sim", "", "similarity model: TF, TFIDF or BM25 (overrides similarity.model)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetInt("port"); v > 0 {
		cfg.Server.Port = v
	}
	if v, _ := cmd.Flags().GetString("sim"); v != "" {
		cfg.Similarity.Model = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	slog.Info("starting ranker service", "port", cfg.Server.Port, "model", cfg.Similarity.Model)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	pp, err := newPreprocessor(cfg)
	if err != nil {
		return err
	}
	table, err := loadTable(ctx, cfg, pp)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, table, m)
	if err != nil {
		return err
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		err = resilience.Retry(ctx, "redis connect", resilience.RetryConfig{
			MaxAttempts:    cfg.Redis.ConnectAttempts,
			InitialDelay:   200 * time.Millisecond,
			JitterFraction: 0.1,
		}, func(ctx context.Context) error {
			var err error
			redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			store := cache.NewGuardedStore(redisClient, cfg.Redis.OpTimeout, cfg.Redis.BreakerThreshold, cfg.Redis.BreakerReset)
			queryCache = cache.New(store, cfg.Redis.CacheTTL, m)
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker()
	checker.Register("similarity_engine", engineCheck(engine))
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(searcher.New(pp, engine), queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("ranker service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("ranker service stopped")
	return nil
}

func engineCheck(engine *similarity.Engine) health.Check {
	return func(context.Context) health.ComponentHealth {
		if engine.NumDocs() == 0 {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no documents"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%s over %d documents", engine.Kind(), engine.NumDocs()),
		}
	}
}
