package commands

import (
	"context"
	"fmt"
	"os"

	"yad2-pets-scraper/config"
	"yad2-pets-scraper/utils"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:           "yad2-pets",
	Short:         "yad2-pets scrapes pet listings from yad2 into a local database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file.")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured log output.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}

// loadConfig reads the config, lets override adjust it, validates it and
// sets up logging from it.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, err := utils.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	utils.SetLogger(utils.NewLogger(os.Stdout, level, !noColor))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
