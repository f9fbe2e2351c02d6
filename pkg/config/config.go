package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "CATALOGSCRAPER_"

// Storage backends
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all configuration options for the catalog scraper
type Config struct {
	// Remote catalog location and request settings
	Source SourceConfig `yaml:"source" json:"source"`

	// Crawl loop behavior
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Snapshot persistence
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Terminal output
	UI UIConfig `yaml:"ui" json:"ui"`
}

// SourceConfig describes where listing and detail pages are fetched from
type SourceConfig struct {
	BaseURL      string        `yaml:"base_url" json:"base_url"`
	ListingPath  string        `yaml:"listing_path" json:"listing_path"`
	ListingQuery string        `yaml:"listing_query" json:"listing_query"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
}

// CrawlConfig holds pagination and enrichment settings
type CrawlConfig struct {
	Workers            int           `yaml:"workers" json:"workers"`
	PageDelay          time.Duration `yaml:"page_delay" json:"page_delay"`
	StartPage          int           `yaml:"start_page" json:"start_page"`
	MaxPages           int           `yaml:"max_pages" json:"max_pages"`
	PageRetries        int           `yaml:"page_retries" json:"page_retries"`
	StrictPages        bool          `yaml:"strict_pages" json:"strict_pages"`
	MarkKnownOnSuccess bool          `yaml:"mark_known_on_success" json:"mark_known_on_success"`
}

// StorageConfig selects and locates the record store
type StorageConfig struct {
	Backend   string `yaml:"backend" json:"backend"`
	Path      string `yaml:"path" json:"path"`
	DSN       string `yaml:"dsn" json:"dsn"`
	StatePath string `yaml:"state_path" json:"state_path"`
}

// RunStatePath returns where the run-state sidecar lives
func (s StorageConfig) RunStatePath() string {
	if s.StatePath != "" {
		return s.StatePath
	}
	return s.Path + ".state.json"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// UIConfig holds terminal output preferences
type UIConfig struct {
	ColorEnabled    bool `yaml:"color_enabled" json:"color_enabled"`
	ProgressEnabled bool `yaml:"progress_enabled" json:"progress_enabled"`
	Notify          bool `yaml:"notify" json:"notify"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:      "https://hurawatchzz.tv",
			ListingPath:  "/top-imdb",
			ListingQuery: "type=all",
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
			Timeout:      10 * time.Second,
		},
		Crawl: CrawlConfig{
			Workers:            10,
			PageDelay:          300 * time.Millisecond,
			StartPage:          1,
			MaxPages:           0, // 0 means until the catalog is exhausted
			PageRetries:        0,
			StrictPages:        false,
			MarkKnownOnSuccess: false,
		},
		Storage: StorageConfig{
			Backend: BackendJSON,
			Path:    "imdb.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
		UI: UIConfig{
			ColorEnabled:    true,
			ProgressEnabled: true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.Source.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Source.Timeout = d
		}
	}

	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWORKERS: %w", EnvPrefix, err))
		} else {
			c.Crawl.Workers = n
		}
	}
	if v := os.Getenv(EnvPrefix + "PAGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_DELAY: %w", EnvPrefix, err))
		} else {
			c.Crawl.PageDelay = d
		}
	}
	if v := os.Getenv(EnvPrefix + "MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_PAGES: %w", EnvPrefix, err))
		} else {
			c.Crawl.MaxPages = n
		}
	}

	if v := os.Getenv(EnvPrefix + "STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvPrefix + "DSN"); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		"catalogscraper.yaml",
		"catalogscraper.yml",
		".catalogscraper.yaml",
		".catalogscraper.yml",
	}
	if home, err := homedir.Dir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".config", "catalogscraper", "config.yaml"),
			filepath.Join(home, ".catalogscraper.yaml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// ExpandPaths resolves '~' in file system paths
func (c *Config) ExpandPaths() error {
	var err error
	if c.Storage.Path, err = homedir.Expand(c.Storage.Path); err != nil {
		return fmt.Errorf("storage path: %w", err)
	}
	if c.Storage.StatePath, err = homedir.Expand(c.Storage.StatePath); err != nil {
		return fmt.Errorf("state path: %w", err)
	}
	if c.Logging.File, err = homedir.Expand(c.Logging.File); err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Source
	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source base URL is required"))
	} else if u, err := url.Parse(c.Source.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("source base URL %q is not an absolute URL", c.Source.BaseURL))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source timeout must be positive"))
	}

	// Crawl
	if c.Crawl.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Crawl.Workers > 64 {
		errs = append(errs, errors.New("workers should not exceed 64"))
	}
	if c.Crawl.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Crawl.StartPage < 1 {
		errs = append(errs, errors.New("start page must be at least 1"))
	}
	if c.Crawl.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	if c.Crawl.PageRetries < 0 {
		errs = append(errs, errors.New("page retries cannot be negative"))
	}

	// Storage
	switch strings.ToLower(c.Storage.Backend) {
	case BackendJSON, BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage path is required"))
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage DSN is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	// Logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["base-url"].(string); ok && v != "" {
		c.Source.BaseURL = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := flags["backend"].(string); ok && v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := flags["dsn"].(string); ok && v != "" {
		c.Storage.DSN = v
	}
	if v, ok := flags["workers"].(int); ok && v > 0 {
		c.Crawl.Workers = v
	}
	if v, ok := flags["page-delay"].(time.Duration); ok && v >= 0 {
		c.Crawl.PageDelay = v
	}
	if v, ok := flags["start-page"].(int); ok && v > 0 {
		c.Crawl.StartPage = v
	}
	if v, ok := flags["max-pages"].(int); ok && v >= 0 {
		c.Crawl.MaxPages = v
	}
	if v, ok := flags["page-retries"].(int); ok && v >= 0 {
		c.Crawl.PageRetries = v
	}
	if v, ok := flags["strict-pages"].(bool); ok {
		c.Crawl.StrictPages = v
	}
	if v, ok := flags["mark-known-on-success"].(bool); ok {
		c.Crawl.MarkKnownOnSuccess = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["no-color"].(bool); ok && v {
		c.UI.ColorEnabled = false
	}
	if v, ok := flags["no-progress"].(bool); ok && v {
		c.UI.ProgressEnabled = false
	}
	if v, ok := flags["notify"].(bool); ok && v {
		c.UI.Notify = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	if home, err := homedir.Dir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".catalogscraper.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
