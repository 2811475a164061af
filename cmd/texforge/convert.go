package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/texforge/texforge/internal/history"
	"github.com/texforge/texforge/internal/pipeline"
	"github.com/texforge/texforge/internal/utils"
)

var (
	convertDir       string
	convertProfile   string
	convertOverwrite bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert exported PNG/TGA textures to DDS",
	Long: `Convert runs the full post-processing pipeline over the given files: the
specular levels adjustment when enabled, suffix-based format resolution
against the active profile, and texconv invocation. Files whose DDS output
already exists are skipped unless overwriting is enabled.

Pass files directly or use --dir to pick up every PNG/TGA in a folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if convertDir != "" {
			scanned, err := utils.ScanTextures(convertDir)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", convertDir, err)
			}
			paths = append(paths, scanned...)
		}
		if len(paths) == 0 {
			return fmt.Errorf("no input files; pass paths or --dir")
		}

		store, settings, err := openStore()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("profile") {
			settings.ActiveProfile = convertProfile
		}
		if cmd.Flags().Changed("overwrite") {
			settings.OverwriteDDS = convertOverwrite
		}

		suffixes, err := store.LoadProfile(settings.ActiveProfile)
		if err != nil {
			return fmt.Errorf("loading profile %q: %w", settings.ActiveProfile, err)
		}

		opts := []pipeline.Option{pipeline.WithWorkers(cfg.Workers)}
		journal, err := history.Open(history.DefaultJournalOptions(cfg.Journal))
		if err != nil {
			slog.Warn("conversion journal unavailable", "error", err)
		} else {
			defer journal.Close()
			opts = append(opts, pipeline.WithRecorder(journal))
		}

		progress := utils.NewProgress(len(paths), !noProgress)
		var done atomic.Int64
		opts = append(opts, pipeline.WithOnOutcome(func(o pipeline.Outcome) {
			progress.Update(int(done.Add(1)), filepath.Base(o.Path))
		}))

		p := pipeline.New(settings, suffixes, slog.Default(), opts...)

		start := time.Now()
		outcomes, err := p.ConvertBatch(context.Background(), paths)
		progress.Finish()
		if err != nil {
			return err
		}

		counts := map[pipeline.Status]int{}
		for _, o := range outcomes {
			counts[o.Status]++
			fmt.Println(o.Message)
		}
		slog.Info("batch finished",
			"files", len(outcomes),
			"converted", counts[pipeline.StatusConverted],
			"skipped", counts[pipeline.StatusSkipped],
			"failed", counts[pipeline.StatusFailed],
			"ignored", counts[pipeline.StatusIgnored],
			"elapsed", time.Since(start).Round(time.Millisecond))

		if counts[pipeline.StatusFailed] > 0 {
			return fmt.Errorf("%d of %d files failed", counts[pipeline.StatusFailed], len(outcomes))
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertDir, "dir", "", "convert every png/tga file in this directory")
	convertCmd.Flags().StringVar(&convertProfile, "profile", "", "profile to resolve formats with (default: active profile)")
	convertCmd.Flags().BoolVar(&convertOverwrite, "overwrite", false, "replace existing DDS outputs")
	rootCmd.AddCommand(convertCmd)
}
