package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration. Nested structs use
// underscore delimiters, e.g. PHANTOM_API_KEY, OPENAI_MODEL.
type EnvConfig struct {
	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.talentwatch
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/talentwatch.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// ReportDir is where published report tables are written.
	// Env: REPORT_DIR
	// Default: {data_dir}/reports
	ReportDir string `envconfig:"REPORT_DIR"`

	// HTTPCacheDir caches vendor and LLM HTTP responses on disk when set.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// CompaniesFile is the JSON file mapping watched company profile URLs
	// to display names.
	// Env: COMPANIES_FILE
	CompaniesFile string `envconfig:"COMPANIES_FILE"`

	// PrefetchWorkers is the number of parallel batch fetchers.
	// Env: PREFETCH_WORKERS (default: 4)
	PrefetchWorkers int `envconfig:"PREFETCH_WORKERS" default:"4"`

	// Phantom configures the scraping vendor API.
	Phantom PhantomEnv `envconfig:"PHANTOM"`

	// OpenAI configures the disambiguation oracle.
	OpenAI OpenAIEnv `envconfig:"OPENAI"`

	// Watch configures periodic reconciliation runs.
	Watch WatchEnv `envconfig:"WATCH"`
}

// PhantomEnv holds environment configuration for the vendor API.
type PhantomEnv struct {
	// BaseURL is the API base URL.
	// Env: PHANTOM_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey authenticates against the vendor API.
	// Env: PHANTOM_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// EmployeesAgentID is the company-employees agent.
	// Env: PHANTOM_EMPLOYEES_AGENT_ID
	EmployeesAgentID string `envconfig:"EMPLOYEES_AGENT_ID"`

	// SearchExportAgentID is the people-search agent.
	// Env: PHANTOM_SEARCH_EXPORT_AGENT_ID
	SearchExportAgentID string `envconfig:"SEARCH_EXPORT_AGENT_ID"`

	// ProfileFinderAgentID is the profile URL finder agent.
	// Env: PHANTOM_PROFILE_FINDER_AGENT_ID
	ProfileFinderAgentID string `envconfig:"PROFILE_FINDER_AGENT_ID"`

	// Timeout is the HTTP timeout in seconds.
	// Env: PHANTOM_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`
}

// OpenAIEnv holds environment configuration for the oracle.
type OpenAIEnv struct {
	// APIKey authenticates against the OpenAI API.
	// Env: OPENAI_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the chat model.
	// Env: OPENAI_MODEL (default: gpt-4o-mini)
	Model string `envconfig:"MODEL" default:"gpt-4o-mini"`

	// MaxRetries is the maximum retry count.
	// Env: OPENAI_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: OPENAI_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: OPENAI_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// WatchEnv holds environment configuration for periodic runs.
type WatchEnv struct {
	// Enabled controls whether periodic runs are enabled.
	// Env: WATCH_ENABLED (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// IntervalSeconds is the time between runs in seconds.
	// Env: WATCH_INTERVAL_SECONDS (default: 1800)
	IntervalSeconds float64 `envconfig:"INTERVAL_SECONDS" default:"1800"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithLogLevel(e.LogLevel),
		WithLogFormat(parseLogFormat(e.LogFormat)),
	}

	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.ReportDir != "" {
		opts = append(opts, WithReportDir(e.ReportDir))
	}
	if e.HTTPCacheDir != "" {
		opts = append(opts, WithHTTPCacheDir(e.HTTPCacheDir))
	}
	if e.CompaniesFile != "" {
		opts = append(opts, WithCompaniesFile(e.CompaniesFile))
	}
	if e.PrefetchWorkers > 0 {
		opts = append(opts, WithPrefetchWorkers(e.PrefetchWorkers))
	}

	opts = append(opts,
		WithPhantomConfig(e.Phantom.ToPhantomConfig()),
		WithOracleConfig(e.OpenAI.ToOracleConfig()),
		WithWatchConfig(e.Watch.ToWatchConfig()),
	)

	return NewAppConfig(opts...)
}

// ToPhantomConfig converts PhantomEnv to PhantomConfig.
func (p PhantomEnv) ToPhantomConfig() PhantomConfig {
	cfg := NewPhantomConfig()
	if p.BaseURL != "" {
		cfg.baseURL = p.BaseURL
	}
	cfg.apiKey = p.APIKey
	cfg.employeesAgentID = p.EmployeesAgentID
	cfg.searchExportAgentID = p.SearchExportAgentID
	cfg.profileFinderAgentID = p.ProfileFinderAgentID
	if p.Timeout > 0 {
		cfg.timeout = time.Duration(p.Timeout * float64(time.Second))
	}
	return cfg
}

// ToOracleConfig converts OpenAIEnv to OracleConfig.
func (o OpenAIEnv) ToOracleConfig() OracleConfig {
	cfg := NewOracleConfig()
	cfg.apiKey = o.APIKey
	if o.Model != "" {
		cfg.model = o.Model
	}
	if o.MaxRetries > 0 {
		cfg.maxRetries = o.MaxRetries
	}
	if o.InitialDelay > 0 {
		cfg.initialDelay = time.Duration(o.InitialDelay * float64(time.Second))
	}
	if o.BackoffFactor > 0 {
		cfg.backoffFactor = o.BackoffFactor
	}
	return cfg
}

// ToWatchConfig converts WatchEnv to WatchConfig.
func (w WatchEnv) ToWatchConfig() WatchConfig {
	cfg := NewWatchConfig().WithEnabled(w.Enabled)
	if w.IntervalSeconds > 0 {
		cfg = cfg.WithInterval(time.Duration(w.IntervalSeconds * float64(time.Second)))
	}
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
