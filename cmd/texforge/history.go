package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/texforge/texforge/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversion outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, err := history.Open(history.DefaultJournalOptions(cfg.Journal))
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer journal.Close()

		entries, err := journal.Recent(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no conversions recorded yet")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-9s  %-20s  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Status,
				filepath.Base(e.File),
				e.Message)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "max entries to show")
	rootCmd.AddCommand(historyCmd)
}
