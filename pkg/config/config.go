// Package config loads and validates ranker configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Similarity, Preprocess, Index, Query, Server, Redis, etc.).
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Similarity SimilarityConfig `yaml:"similarity"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Index      IndexConfig      `yaml:"index"`
	Query      QueryConfig      `yaml:"query"`
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// SimilarityConfig selects the relevance model and its tunables.
type SimilarityConfig struct {
	Model string  `yaml:"model"`
	K1    float64 `yaml:"k1"`
	B     float64 `yaml:"b"`
	// Workers bounds precompute parallelism; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// BM25Normalize scales BM25 weights by query frequency and divides by
	// the document norm, like the cosine models do.
	BM25Normalize bool `yaml:"bm25Normalize"`
}

// PreprocessConfig controls tokenisation and stemming.
type PreprocessConfig struct {
	Tokenizer     string `yaml:"tokenizer"`
	Stemmer       string `yaml:"stemmer"`
	StopWords     bool   `yaml:"stopWords"`
	StemCacheSize int    `yaml:"stemCacheSize"`
}

// IndexConfig locates the corpus and the persisted postings snapshot.
type IndexConfig struct {
	CorpusDir    string `yaml:"corpusDir"`
	SnapshotPath string `yaml:"snapshotPath"`
	UseStored    bool   `yaml:"useStored"`
	Workers      int    `yaml:"workers"`
}

// QueryConfig controls the batch query driver.
type QueryConfig struct {
	TopicsFile string `yaml:"topicsFile"`
	RunsFile   string `yaml:"runsFile"`
	RunTag     string `yaml:"runTag"`
	// Limit caps results per topic; 0 writes every scored document.
	Limit int `yaml:"limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// SearchConfig controls per-request result limits.
type SearchConfig struct {
	MaxResults   int `yaml:"maxResults"`
	DefaultLimit int `yaml:"defaultLimit"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
	// OpTimeout bounds each cache round trip.
	OpTimeout        time.Duration `yaml:"opTimeout"`
	ConnectAttempts  int           `yaml:"connectAttempts"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerReset     time.Duration `yaml:"breakerReset"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the settings used when no file or env override is given.
func Default() *Config {
	return &Config{
		Similarity: SimilarityConfig{
			Model: "TF",
			K1:    2.0,
			B:     0.75,
		},
		Preprocess: PreprocessConfig{
			Tokenizer:     "punct",
			Stemmer:       "porter",
			StemCacheSize: 10000,
		},
		Index: IndexConfig{
			CorpusDir:    "gov/documents",
			SnapshotPath: "index/postings.spdx",
		},
		Query: QueryConfig{
			TopicsFile: "gov/topics/gov.topics",
			RunsFile:   "runs/retrieved.runs",
			RunTag:     "MY_IR_SYSTEM",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Search: SearchConfig{
			MaxResults:   1000,
			DefaultLimit: 10,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,

			OpTimeout:        100 * time.Millisecond,
			ConnectAttempts:  3,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate rejects settings the similarity engine cannot run with.
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Similarity.Model) {
	case "TF", "TFIDF", "BM25":
	default:
		return fmt.Errorf("%w: similarity.model %q", apperrors.ErrInvalidConfig, c.Similarity.Model)
	}
	if c.Similarity.K1 < 0 || math.IsNaN(c.Similarity.K1) || math.IsInf(c.Similarity.K1, 0) {
		return fmt.Errorf("%w: similarity.k1 must be a finite value >= 0, got %g", apperrors.ErrInvalidConfig, c.Similarity.K1)
	}
	if !(c.Similarity.B >= 0 && c.Similarity.B <= 1) {
		return fmt.Errorf("%w: similarity.b must be in [0,1], got %g", apperrors.ErrInvalidConfig, c.Similarity.B)
	}
	if c.Preprocess.StemCacheSize <= 0 {
		return fmt.Errorf("%w: preprocess.stemCacheSize must be positive", apperrors.ErrInvalidConfig)
	}
	if c.Query.Limit < 0 {
		return fmt.Errorf("%w: query.limit must be >= 0", apperrors.ErrInvalidConfig)
	}
	return nil
}

// applyEnvOverrides reads RR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RR_SIMILARITY_MODEL"); v != "" {
		cfg.Similarity.Model = v
	}
	if v := os.Getenv("RR_SIMILARITY_K1"); v != "" {
		if k1, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Similarity.K1 = k1
		}
	}
	if v := os.Getenv("RR_SIMILARITY_B"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Similarity.B = b
		}
	}
	if v := os.Getenv("RR_SIMILARITY_BM25_NORMALIZE"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Similarity.BM25Normalize = on
		}
	}
	if v := os.Getenv("RR_PREPROCESS_TOKENIZER"); v != "" {
		cfg.Preprocess.Tokenizer = v
	}
	if v := os.Getenv("RR_PREPROCESS_STEMMER"); v != "" {
		cfg.Preprocess.Stemmer = v
	}
	if v := os.Getenv("RR_INDEX_CORPUS_DIR"); v != "" {
		cfg.Index.CorpusDir = v
	}
	if v := os.Getenv("RR_INDEX_SNAPSHOT_PATH"); v != "" {
		cfg.Index.SnapshotPath = v
	}
	if v := os.Getenv("RR_QUERY_TOPICS_FILE"); v != "" {
		cfg.Query.TopicsFile = v
	}
	if v := os.Getenv("RR_QUERY_RUNS_FILE"); v != "" {
		cfg.Query.RunsFile = v
	}
	if v := os.Getenv("RR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("RR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("RR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
