package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"catalogscraper/pkg/config"
	"catalogscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Catalog Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (CATALOGSCRAPER_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'catalogscraper.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The password of a Postgres DSN is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration and check it for invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Storage and log paths`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# Catalog Scraper configuration
#
# Every option can also be set with an environment variable prefixed with
# CATALOGSCRAPER_, for example CATALOGSCRAPER_WORKERS=4.

# Where the catalog is read from
source:
  base_url: "https://hurawatchzz.tv"
  listing_path: "/top-imdb"
  listing_query: "type=all"
  # Leave empty to use the built-in browser user agent
  user_agent: ""
  # Timeout of a single page or detail request
  timeout: 10s

# Crawl behaviour
crawl:
  # Concurrent detail fetches per page
  workers: 10
  # Pause between listing pages
  page_delay: 300ms
  start_page: 1
  # 0 crawls until an empty page is reached
  max_pages: 0
  # Extra attempts for a listing page that fails
  page_retries: 0
  # Fail the run instead of stopping quietly when a listing page fails
  strict_pages: false
  # Leave entries whose detail fetch failed for a later run
  mark_known_on_success: false

# Where records are kept
storage:
  # json, sqlite or postgres
  backend: "json"
  path: "imdb.json"
  # Required for the postgres backend
  dsn: ""
  # Run state file (default: <path>.state.json)
  state_path: ""

logging:
  # debug, info, warn, error
  level: "info"
  # text or json
  format: "text"
  # Optional file receiving JSON log lines
  file: ""

ui:
  color_enabled: true
  progress_enabled: true
  notify: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "catalogscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output(), "\nNext steps:")
	fmt.Fprintln(ui.Output(), "1. Adjust the source and storage sections")
	fmt.Fprintln(ui.Output(), "2. Run 'catalogscraper config validate' to check the configuration")
	fmt.Fprintln(ui.Output(), "3. Start crawling with 'catalogscraper scrape'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return err
	}

	display := *cfg
	display.Storage.DSN = maskDSN(display.Storage.DSN)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output())
	fmt.Fprint(ui.Output(), string(data))

	fmt.Fprintln(ui.Output(), "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output(), "1. Command line flags")
	fmt.Fprintf(ui.Output(), "2. Environment variables (%s*)\n", config.EnvPrefix)
	if configFile != "" {
		fmt.Fprintf(ui.Output(), "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(ui.Output(), "3. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(ui.Output(), "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if errs := checkPaths(cfg); len(errs) > 0 {
		return fmt.Errorf("configuration has errors: %w", errors.Join(errs...))
	}

	ui.PrintSuccess("Configuration is valid")

	out := ui.Output()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Listing: %s%s?%s\n", cfg.Source.BaseURL, cfg.Source.ListingPath, cfg.Source.ListingQuery)
	fmt.Fprintf(out, "  Workers: %d\n", cfg.Crawl.Workers)
	fmt.Fprintf(out, "  Page delay: %s\n", cfg.Crawl.PageDelay)
	fmt.Fprintf(out, "  Storage: %s\n", storageDescription(cfg.Storage))
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// checkPaths makes sure the directories the run writes to can be created
func checkPaths(cfg *config.Config) []error {
	var errs []error
	if cfg.Storage.Backend != config.BackendPostgres && cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			errs = append(errs, fmt.Errorf("cannot create storage directory: %w", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			errs = append(errs, fmt.Errorf("cannot create log directory: %w", err))
		}
	}
	return errs
}

func storageDescription(s config.StorageConfig) string {
	if s.Backend == config.BackendPostgres {
		return s.Backend + " " + maskDSN(s.DSN)
	}
	return s.Backend + " " + s.Path
}

// maskDSN hides the password of a URL-style connection string
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
