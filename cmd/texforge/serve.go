package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/texforge/texforge/internal/bridge"
	"github.com/texforge/texforge/internal/config"
	"github.com/texforge/texforge/internal/history"
	"github.com/texforge/texforge/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for export-finished notifications over HTTP",
	Long: `Serve starts a small HTTP server the host application notifies after each
texture export. POST the export result to /export-finished:

    {"message": "Export finished", "textures": {"set": ["/path/wall_d.png"]}}

Each notification is converted with a fresh snapshot of the settings and the
active profile, so profile edits apply to the next export, never one already
in flight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.NewStore(cfg.Settings, slog.Default())

		var recorder pipeline.Recorder
		journal, err := history.Open(history.DefaultJournalOptions(cfg.Journal))
		if err != nil {
			slog.Warn("conversion journal unavailable", "error", err)
		} else {
			defer journal.Close()
			recorder = journal
		}

		factory := func() (*pipeline.Pipeline, *config.Settings, error) {
			settings, err := store.Load()
			if err != nil {
				if settings == nil {
					return nil, nil, err
				}
				slog.Warn("settings problem", "error", err)
			}
			suffixes, err := store.LoadProfile(settings.ActiveProfile)
			if err != nil {
				return nil, nil, fmt.Errorf("loading profile %q: %w", settings.ActiveProfile, err)
			}
			opts := []pipeline.Option{pipeline.WithWorkers(cfg.Workers)}
			if recorder != nil {
				opts = append(opts, pipeline.WithRecorder(recorder))
			}
			return pipeline.New(settings, suffixes, slog.Default(), opts...), settings, nil
		}

		srv := bridge.NewServer(cfg.Listen, bridge.New(factory, slog.Default()), slog.Default())

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
