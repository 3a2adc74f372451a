package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Portal      PortalConfig    `toml:"portal"`
	Storage     StorageConfig   `toml:"storage"`
	Crawler     CrawlerConfig   `toml:"crawler"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// PortalConfig describes the CaseLink portal endpoints and credentials
type PortalConfig struct {
	BaseURL      string `toml:"base_url"`      // CaseLink entry page
	Username     string `toml:"username"`      // Portal login
	Password     string `toml:"password"`      // Portal login
	DocumentHost string `toml:"document_host"` // Host serving filed PDF documents
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
}

// SQLiteConfig represents SQLite-specific configuration
type SQLiteConfig struct {
	Path          string `toml:"path"`            // Database file path
	WALMode       bool   `toml:"wal_mode"`        // Enable WAL journal mode
	BusyTimeoutMS int    `toml:"busy_timeout_ms"` // PRAGMA busy_timeout
	CacheSizeMB   int    `toml:"cache_size_mb"`   // PRAGMA cache_size
}

// CrawlerConfig contains browser and crawl timing configuration.
// The portal is a legacy server-rendered UI whose frames populate
// asynchronously after each postback; the retry counts and bounded waits
// below exist to absorb that.
type CrawlerConfig struct {
	Headless         bool    `toml:"headless"`
	NoSandbox        bool    `toml:"no_sandbox"`
	UserAgent        string  `toml:"user_agent"`
	SearchAttempts   int     `toml:"search_attempts"`   // Attempts to interact with the docket search field
	PostbackAttempts int     `toml:"postback_attempts"` // Attempts to read the postback document list
	RetryDelay       string  `toml:"retry_delay"`       // Backoff between attempts, e.g. "500ms"
	ElementWait      string  `toml:"element_wait"`      // Staleness/clickability wait bound, e.g. "1s"
	GridWait         string  `toml:"grid_wait"`         // Hearing grid visibility wait bound, e.g. "2s"
	StaleAfterDays   int     `toml:"stale_after_days"`  // Re-check warrants whose last check is older than this
	RequestTimeout   string  `toml:"request_timeout"`   // Document fetch timeout, e.g. "30s"
	FetchRate        float64 `toml:"fetch_rate"`        // Document fetches per second against the PDF host
	NavigationWait   string  `toml:"navigation_wait"`   // Settle time after login/search navigation
}

// SchedulerConfig contains cron schedules for the pipeline stages
type SchedulerConfig struct {
	Enabled           bool   `toml:"enabled"`
	CrawlSchedule     string `toml:"crawl_schedule"`     // Cron expression
	ExtractSchedule   string `toml:"extract_schedule"`   // Cron expression
	ReconcileSchedule string `toml:"reconcile_schedule"` // Cron expression
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Portal: PortalConfig{
			BaseURL:      "https://caselink.nashville.gov",
			DocumentHost: "caselinkimages.nashville.gov",
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          "./data/caselink.db",
				WALMode:       true,
				BusyTimeoutMS: 5000,
				CacheSizeMB:   64,
			},
		},
		Crawler: CrawlerConfig{
			Headless:         true,
			NoSandbox:        true,
			UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			SearchAttempts:   4,
			PostbackAttempts: 4,
			RetryDelay:       "500ms",
			ElementWait:      "1s",
			GridWait:         "2s",
			StaleAfterDays:   3,
			RequestTimeout:   "30s",
			FetchRate:        1,
			NavigationWait:   "2s",
		},
		Scheduler: SchedulerConfig{
			Enabled:           true,
			CrawlSchedule:     "0 */6 * * *",
			ExtractSchedule:   "30 */6 * * *",
			ReconcileSchedule: "45 */6 * * *",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later config files override earlier ones; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies CASELINK_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CASELINK_ENV"); env != "" {
		config.Environment = env
	}
	if url := os.Getenv("CASELINK_PORTAL_URL"); url != "" {
		config.Portal.BaseURL = url
	}
	if user := os.Getenv("CASELINK_PORTAL_USERNAME"); user != "" {
		config.Portal.Username = user
	}
	if pass := os.Getenv("CASELINK_PORTAL_PASSWORD"); pass != "" {
		config.Portal.Password = pass
	}
	if host := os.Getenv("CASELINK_DOCUMENT_HOST"); host != "" {
		config.Portal.DocumentHost = host
	}
	if path := os.Getenv("CASELINK_SQLITE_PATH"); path != "" {
		config.Storage.SQLite.Path = path
	}
	if level := os.Getenv("CASELINK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if headless := os.Getenv("CASELINK_HEADLESS"); headless != "" {
		if v, err := strconv.ParseBool(headless); err == nil {
			config.Crawler.Headless = v
		}
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures deep inside a crawl.
func (c *Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.base_url is required")
	}
	if c.Portal.DocumentHost == "" {
		return fmt.Errorf("portal.document_host is required")
	}
	if c.Crawler.SearchAttempts <= 0 {
		return fmt.Errorf("crawler.search_attempts must be positive, got %d", c.Crawler.SearchAttempts)
	}
	if c.Crawler.PostbackAttempts <= 0 {
		return fmt.Errorf("crawler.postback_attempts must be positive, got %d", c.Crawler.PostbackAttempts)
	}
	if c.Crawler.StaleAfterDays <= 0 {
		return fmt.Errorf("crawler.stale_after_days must be positive, got %d", c.Crawler.StaleAfterDays)
	}
	for _, d := range []struct {
		name, value string
	}{
		{"crawler.retry_delay", c.Crawler.RetryDelay},
		{"crawler.element_wait", c.Crawler.ElementWait},
		{"crawler.grid_wait", c.Crawler.GridWait},
		{"crawler.request_timeout", c.Crawler.RequestTimeout},
		{"crawler.navigation_wait", c.Crawler.NavigationWait},
	} {
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", d.name, err)
		}
	}
	return nil
}

// Duration parses a duration config value, falling back when unset or invalid
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
