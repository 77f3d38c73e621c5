// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel           = "INFO"
	DefaultPhantomBaseURL     = "https://api.phantombuster.com/api/v2"
	DefaultPhantomTimeout     = 60 * time.Second
	DefaultOracleModel        = "gpt-4o-mini"
	DefaultOracleMaxRetries   = 5
	DefaultOracleInitialDelay = 2 * time.Second
	DefaultOracleBackoff      = 2.0
	DefaultWatchInterval      = 1800 * time.Second
	DefaultPrefetchWorkers    = 4
	DefaultReportSubdir       = "reports"
)

// DefaultDataDir returns ~/.talentwatch, falling back to the working
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".talentwatch")
}

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// PhantomConfig configures the scraping vendor API.
type PhantomConfig struct {
	baseURL              string
	apiKey               string
	employeesAgentID     string
	searchExportAgentID  string
	profileFinderAgentID string
	timeout              time.Duration
}

// NewPhantomConfig creates a PhantomConfig with defaults.
func NewPhantomConfig() PhantomConfig {
	return PhantomConfig{
		baseURL: DefaultPhantomBaseURL,
		timeout: DefaultPhantomTimeout,
	}
}

// BaseURL returns the vendor API base URL.
func (p PhantomConfig) BaseURL() string { return p.baseURL }

// APIKey returns the vendor API key.
func (p PhantomConfig) APIKey() string { return p.apiKey }

// EmployeesAgentID returns the company-employees agent ID.
func (p PhantomConfig) EmployeesAgentID() string { return p.employeesAgentID }

// SearchExportAgentID returns the people-search agent ID.
func (p PhantomConfig) SearchExportAgentID() string { return p.searchExportAgentID }

// ProfileFinderAgentID returns the profile URL finder agent ID.
func (p PhantomConfig) ProfileFinderAgentID() string { return p.profileFinderAgentID }

// Timeout returns the HTTP timeout.
func (p PhantomConfig) Timeout() time.Duration { return p.timeout }

// IsConfigured reports whether an API key is present.
func (p PhantomConfig) IsConfigured() bool { return p.apiKey != "" }

// WithBaseURL returns a new config with the base URL set.
func (p PhantomConfig) WithBaseURL(url string) PhantomConfig {
	p.baseURL = url
	return p
}

// WithAPIKey returns a new config with the API key set.
func (p PhantomConfig) WithAPIKey(key string) PhantomConfig {
	p.apiKey = key
	return p
}

// WithEmployeesAgentID returns a new config with the company-employees
// agent set.
func (p PhantomConfig) WithEmployeesAgentID(id string) PhantomConfig {
	p.employeesAgentID = id
	return p
}

// WithSearchExportAgentID returns a new config with the people-search
// agent set.
func (p PhantomConfig) WithSearchExportAgentID(id string) PhantomConfig {
	p.searchExportAgentID = id
	return p
}

// WithProfileFinderAgentID returns a new config with the profile URL
// finder agent set.
func (p PhantomConfig) WithProfileFinderAgentID(id string) PhantomConfig {
	p.profileFinderAgentID = id
	return p
}

// WithTimeout returns a new config with the HTTP timeout set.
func (p PhantomConfig) WithTimeout(d time.Duration) PhantomConfig {
	p.timeout = d
	return p
}

// OracleConfig configures the LLM disambiguation oracle.
type OracleConfig struct {
	apiKey        string
	model         string
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// NewOracleConfig creates an OracleConfig with defaults.
func NewOracleConfig() OracleConfig {
	return OracleConfig{
		model:         DefaultOracleModel,
		maxRetries:    DefaultOracleMaxRetries,
		initialDelay:  DefaultOracleInitialDelay,
		backoffFactor: DefaultOracleBackoff,
	}
}

// APIKey returns the API key.
func (o OracleConfig) APIKey() string { return o.apiKey }

// Model returns the chat model.
func (o OracleConfig) Model() string { return o.model }

// MaxRetries returns the maximum retry count.
func (o OracleConfig) MaxRetries() int { return o.maxRetries }

// InitialDelay returns the initial retry delay.
func (o OracleConfig) InitialDelay() time.Duration { return o.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (o OracleConfig) BackoffFactor() float64 { return o.backoffFactor }

// IsConfigured reports whether an API key is present.
func (o OracleConfig) IsConfigured() bool { return o.apiKey != "" }

// WithAPIKey returns a new config with the API key set.
func (o OracleConfig) WithAPIKey(key string) OracleConfig {
	o.apiKey = key
	return o
}

// WithModel returns a new config with the chat model set.
func (o OracleConfig) WithModel(model string) OracleConfig {
	o.model = model
	return o
}

// WithMaxRetries returns a new config with the retry count set.
func (o OracleConfig) WithMaxRetries(n int) OracleConfig {
	o.maxRetries = n
	return o
}

// WatchConfig configures periodic reconciliation runs.
type WatchConfig struct {
	enabled  bool
	interval time.Duration
}

// NewWatchConfig creates a WatchConfig with defaults.
func NewWatchConfig() WatchConfig {
	return WatchConfig{
		enabled:  true,
		interval: DefaultWatchInterval,
	}
}

// Enabled returns whether periodic runs are enabled.
func (w WatchConfig) Enabled() bool { return w.enabled }

// Interval returns the time between runs.
func (w WatchConfig) Interval() time.Duration { return w.interval }

// WithEnabled returns a new config with the specified enabled state.
func (w WatchConfig) WithEnabled(enabled bool) WatchConfig {
	w.enabled = enabled
	return w
}

// WithInterval returns a new config with the specified interval.
func (w WatchConfig) WithInterval(d time.Duration) WatchConfig {
	w.interval = d
	return w
}

// AppConfig is the immutable application configuration.
type AppConfig struct {
	dataDir         string
	dbURL           string
	logLevel        string
	logFormat       LogFormat
	reportDir       string
	httpCacheDir    string
	companiesFile   string
	prefetchWorkers int
	phantom         PhantomConfig
	oracle          OracleConfig
	watch           WatchConfig
}

// AppConfigOption mutates an AppConfig during construction.
type AppConfigOption func(*AppConfig)

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.dataDir = dir }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithReportDir sets the report output directory.
func WithReportDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.reportDir = dir }
}

// WithHTTPCacheDir sets the HTTP response cache directory.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// WithCompaniesFile sets the watched-companies file path.
func WithCompaniesFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.companiesFile = path }
}

// WithPrefetchWorkers sets the number of parallel batch fetchers.
func WithPrefetchWorkers(n int) AppConfigOption {
	return func(c *AppConfig) { c.prefetchWorkers = n }
}

// WithPhantomConfig sets the vendor API configuration.
func WithPhantomConfig(p PhantomConfig) AppConfigOption {
	return func(c *AppConfig) { c.phantom = p }
}

// WithOracleConfig sets the oracle configuration.
func WithOracleConfig(o OracleConfig) AppConfigOption {
	return func(c *AppConfig) { c.oracle = o }
}

// WithWatchConfig sets the periodic run configuration.
func WithWatchConfig(w WatchConfig) AppConfigOption {
	return func(c *AppConfig) { c.watch = w }
}

// NewAppConfig creates an AppConfig with defaults applied.
func NewAppConfig(opts ...AppConfigOption) AppConfig {
	cfg := AppConfig{
		logLevel:        DefaultLogLevel,
		logFormat:       LogFormatPretty,
		prefetchWorkers: DefaultPrefetchWorkers,
		phantom:         NewPhantomConfig(),
		oracle:          NewOracleConfig(),
		watch:           NewWatchConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.dataDir == "" {
		cfg.dataDir = DefaultDataDir()
	}
	if cfg.dbURL == "" {
		cfg.dbURL = fmt.Sprintf("sqlite:///%s", filepath.Join(cfg.dataDir, "talentwatch.db"))
	}
	if cfg.reportDir == "" {
		cfg.reportDir = filepath.Join(cfg.dataDir, DefaultReportSubdir)
	}
	return cfg
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// ReportDir returns the report output directory.
func (c AppConfig) ReportDir() string { return c.reportDir }

// HTTPCacheDir returns the HTTP response cache directory.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// CompaniesFile returns the watched-companies file path.
func (c AppConfig) CompaniesFile() string { return c.companiesFile }

// PrefetchWorkers returns the number of parallel batch fetchers.
func (c AppConfig) PrefetchWorkers() int { return c.prefetchWorkers }

// Phantom returns the vendor API configuration.
func (c AppConfig) Phantom() PhantomConfig { return c.phantom }

// Oracle returns the oracle configuration.
func (c AppConfig) Oracle() OracleConfig { return c.oracle }

// Watch returns the periodic run configuration.
func (c AppConfig) Watch() WatchConfig { return c.watch }

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
