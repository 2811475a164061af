package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ToolConfig carries tool-level options that do not belong in the plugin
// settings file: logging, worker count, journal location and the bridge
// listen address. Loaded from an optional texforge.yaml in the home
// directory or the working directory.
type ToolConfig struct {
	Settings  string `mapstructure:"settings"`
	Journal   string `mapstructure:"journal"`
	Workers   int    `mapstructure:"workers"`
	Listen    string `mapstructure:"listen"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// LoadTool initializes and loads the tool configuration from file
func LoadTool(cfgFile string) (*ToolConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	// Set defaults
	viper.SetDefault("settings", filepath.Join(home, ".texforge", "settings.ini"))
	viper.SetDefault("journal", filepath.Join(home, ".texforge", "history.db"))
	viper.SetDefault("workers", 0)
	viper.SetDefault("listen", "127.0.0.1:17471")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	// Config file handling
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName("texforge")
		viper.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ToolConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	return &cfg, nil
}
