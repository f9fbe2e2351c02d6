package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"catalogscraper/pkg/config"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalogscraper",
	Short: "Incrementally crawl a paginated film catalog into a local snapshot",
	Long: `Catalog Scraper walks the paginated listing of a film catalog, fetches the
detail page of every entry it has not seen before and appends the merged
records to a snapshot that is rewritten after each page.

Features:
  - Incremental runs: known entries are skipped, new ones appended
  - Concurrent detail fetches with a fixed worker limit
  - Crash-safe snapshots (JSON file, SQLite or Postgres)
  - Run state sidecar for status reporting
  - Optional retries for failed listing pages`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColorEnabled(false)
		}
		if quiet {
			ui.SetQuietMode(true)
		}
		if verbose && !cmd.Flags().Changed("log-level") {
			logLevel = "debug"
		}

		if cmd.Name() == "scrape" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./catalogscraper.yaml or $HOME/.catalogscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging and per-page output")

	rootCmd.SetVersionTemplate(`Catalog Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags returns the persistent flags in the form config.Load expects
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if noColor {
		flags["no-color"] = true
	}
	return flags
}

// loadConfig loads configuration and initializes the global logger
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if !cfg.UI.ColorEnabled {
		ui.SetColorEnabled(false)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
