package main

import (
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the corpus directory and write a postings snapshot",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().String("corpus", "", "corpus directory (overrides index.corpusDir)")
	indexCmd.Flags().String("out", "", "snapshot path (overrides index.snapshotPath)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("corpus"); v != "" {
		cfg.Index.CorpusDir = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Index.SnapshotPath = v
	}
	pp, err := newPreprocessor(cfg)
	if err != nil {
		return err
	}
	table, err := buildIndex(cmd.Context(), cfg, pp)
	if err != nil {
		return err
	}
	cmd.Printf("indexed %d documents, %d terms -> %s\n", table.NumDocs(), len(table.Terms()), cfg.Index.SnapshotPath)
	return nil
}
