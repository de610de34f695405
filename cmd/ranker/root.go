package main

import (
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/logger"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ranker",
	Short: "Rank documents against queries with TF, TF-IDF or BM25",
	Long: `ranker indexes a directory of plain-text documents into a postings table,
scores queries against it under a TF, TF-IDF or BM25 similarity model, and
writes TREC-style run files or serves ranked results over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
}
