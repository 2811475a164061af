package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/texforge/texforge/internal/config"
)

var (
	cfg     *config.ToolConfig
	cfgFile string

	settingsPath string
	journalPath  string
	workers      int
	listenAddr   string
	logLevel     string
	logFormat    string
	noProgress   bool
)

var rootCmd = &cobra.Command{
	Use:   "texforge",
	Short: "DDS post-processing for exported textures",
	Long: `texforge automates texture post-processing after an export: it applies an
optional levels adjustment to specular maps, resolves a target compression
format from each filename's suffix using the active profile, and batch
converts PNG/TGA files to DDS through the external texconv encoder.

Conversion rules live in named profiles inside a single settings file, so
separate projects can keep separate suffix conventions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadTool(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("settings") {
			cfg.Settings = settingsPath
		}
		if cmd.Flags().Changed("journal") {
			cfg.Journal = journalPath
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen = listenAddr
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		logger := slog.New(handler)
		slog.SetDefault(logger)

		slog.Debug("Configuration",
			"settings", cfg.Settings,
			"journal", cfg.Journal,
			"workers", cfg.Workers,
			"listen", cfg.Listen,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is texforge.yaml in home or pwd)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file path")
	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", "", "conversion history database path")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "max concurrent texconv processes (0 = auto)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "address for the export notification server")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}

// openStore loads the settings store, downgrading a corrupted-file reset to
// a warning as the recovery already happened.
func openStore() (*config.Store, *config.Settings, error) {
	store := config.NewStore(cfg.Settings, slog.Default())
	settings, err := store.Load()
	if err != nil {
		if settings == nil {
			return nil, nil, err
		}
		slog.Warn("settings problem", "error", err)
	}
	return store, settings, nil
}
