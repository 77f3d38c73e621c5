package talentwatch

import (
	"io"
	"log/slog"

	"github.com/talentwatch/talentwatch/application/service"
	"github.com/talentwatch/talentwatch/domain/match"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/internal/config"
)

// databaseType identifies the database backend.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database        databaseType
	dbPath          string
	dbDSN           string
	dataDir         string
	reportDir       string
	httpCacheDir    string
	companies       map[string]string
	companiesFile   string
	prefetchWorkers int
	phantom         config.PhantomConfig
	oracleCfg       config.OracleConfig
	watch           config.WatchConfig
	source          scrape.Source
	oracle          match.Oracle
	parser          service.TitleParser
	logger          *slog.Logger
	closers         []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:         config.DefaultDataDir(),
		prefetchWorkers: config.DefaultPrefetchWorkers,
		phantom:         config.NewPhantomConfig(),
		oracleCfg:       config.NewOracleConfig(),
		watch:           config.NewWatchConfig().WithEnabled(false),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) { c.dataDir = dir }
}

// WithReportDir sets the directory the CSV report tables are written to.
// Defaults to {data_dir}/reports.
func WithReportDir(dir string) Option {
	return func(c *clientConfig) { c.reportDir = dir }
}

// WithHTTPCache caches vendor API responses on disk, keyed by request.
// Useful for development against rate-limited agents.
func WithHTTPCache(dir string) Option {
	return func(c *clientConfig) { c.httpCacheDir = dir }
}

// WithCompanies sets the watched company list, keyed by company profile URL
// with the display name as value.
func WithCompanies(companies map[string]string) Option {
	return func(c *clientConfig) { c.companies = companies }
}

// WithCompaniesFile loads the watched company list from a CSV file.
func WithCompaniesFile(path string) Option {
	return func(c *clientConfig) { c.companiesFile = path }
}

// WithPrefetchWorkers sets how many result batches are fetched in parallel.
func WithPrefetchWorkers(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.prefetchWorkers = n
		}
	}
}

// WithPhantomBuster configures the PhantomBuster scrape source.
func WithPhantomBuster(cfg config.PhantomConfig) Option {
	return func(c *clientConfig) { c.phantom = cfg }
}

// WithOpenAI configures the OpenAI disambiguation oracle.
func WithOpenAI(cfg config.OracleConfig) Option {
	return func(c *clientConfig) { c.oracleCfg = cfg }
}

// WithWatch configures periodic background reconciliation. Disabled unless
// explicitly enabled.
func WithWatch(cfg config.WatchConfig) Option {
	return func(c *clientConfig) { c.watch = cfg }
}

// WithSource sets a custom scrape source, replacing the PhantomBuster
// client. The same source serves the employee and search agents.
func WithSource(source scrape.Source) Option {
	return func(c *clientConfig) { c.source = source }
}

// WithOracle sets a custom disambiguation oracle, replacing OpenAI.
func WithOracle(oracle match.Oracle) Option {
	return func(c *clientConfig) { c.oracle = oracle }
}

// WithTitleParser sets a custom video-title parser. Without one, the OpenAI
// oracle parses titles when it is configured.
func WithTitleParser(parser service.TitleParser) Option {
	return func(c *clientConfig) { c.parser = parser }
}

// WithLogger sets the logger for all client components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithCloser registers a resource to close when the client closes.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) { c.closers = append(c.closers, closer) }
}
