package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/trec"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score every topic and write a TREC run file",
	Long: `Loads the postings snapshot (or indexes the corpus), scores each topic in
the topics file with the selected similarity model, and writes one
"qid Q0 doc rank score tag" line per scored document.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("sim", "", "similarity model: TF, TFIDF or BM25 (overrides similarity.model)")
	runCmd.Flags().Bool("new", true, "build a new index instead of loading the stored snapshot")
	runCmd.Flags().Int("limit", 0, "results per topic, 0 for all (overrides query.limit)")
	runCmd.Flags().String("topics", "", "topics file (overrides query.topicsFile)")
	runCmd.Flags().String("runs", "", "output runs file (overrides query.runsFile)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if v, _ := flags.GetString("sim"); v != "" {
		cfg.Similarity.Model = v
	}
	if flags.Changed("new") {
		fresh, _ := flags.GetBool("new")
		cfg.Index.UseStored = !fresh
	}
	if flags.Changed("limit") {
		cfg.Query.Limit, _ = flags.GetInt("limit")
	}
	if v, _ := flags.GetString("topics"); v != "" {
		cfg.Query.TopicsFile = v
	}
	if v, _ := flags.GetString("runs"); v != "" {
		cfg.Query.RunsFile = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	pp, err := newPreprocessor(cfg)
	if err != nil {
		return err
	}
	table, err := loadTable(ctx, cfg, pp)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, table, nil)
	if err != nil {
		return err
	}

	tf, err := os.Open(cfg.Query.TopicsFile)
	if err != nil {
		return fmt.Errorf("opening topics: %w", err)
	}
	defer tf.Close()
	topics, err := trec.ReadTopics(tf)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Query.RunsFile), 0o755); err != nil {
		return fmt.Errorf("creating runs dir: %w", err)
	}
	out, err := os.Create(cfg.Query.RunsFile)
	if err != nil {
		return fmt.Errorf("creating runs file: %w", err)
	}
	defer out.Close()

	start := time.Now()
	lines, err := runTopics(ctx, out, topics, pp, engine, cfg.Query.RunTag, cfg.Query.Limit)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing runs file: %w", err)
	}
	slog.Info("run complete",
		"model", engine.Kind(),
		"topics", len(topics),
		"lines", lines,
		"runs_file", cfg.Query.RunsFile,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
