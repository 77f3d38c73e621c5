// Package talentwatch tracks employment state for people at watched
// companies, reconciled incrementally from scraped snapshots.
//
// Scrape batches arrive through a vendor agent, are folded into a durable
// per-(person, company) state machine exactly once, and surface as CSV
// report tables. Conference speaker rosters ride the same pipeline:
// speakers are ingested per conference and resolved to profile URLs via
// people-search batches, with an LLM breaking ties between candidates.
//
// Basic usage:
//
//	client, err := talentwatch.New(
//	    talentwatch.WithSQLite(".talentwatch/data.db"),
//	    talentwatch.WithPhantomBuster(phantomCfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Reconcile.Run(ctx)
//	err = client.Reports.PublishAll(ctx)
package talentwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/talentwatch/talentwatch/application/service"
	"github.com/talentwatch/talentwatch/domain/match"
	"github.com/talentwatch/talentwatch/infrastructure/persistence"
	"github.com/talentwatch/talentwatch/infrastructure/phantom"
	"github.com/talentwatch/talentwatch/infrastructure/provider"
	"github.com/talentwatch/talentwatch/infrastructure/reporting"
	"github.com/talentwatch/talentwatch/internal/database"
)

// Client is the main entry point for the talentwatch library.
//
// Access operations via struct fields:
//
//	client.Reconcile.Run(ctx)
//	client.Speakers.Ingest(ctx, conf)
//	client.Reports.PublishAll(ctx)
type Client struct {
	// Public service fields (direct access)
	Reconcile *service.Reconciler
	Speakers  *service.Speakers
	Reports   *service.Reporter

	db      database.Database
	watcher *service.Watcher
	closers []io.Closer

	logger *slog.Logger
	closed atomic.Bool
}

// New creates a new Client with the given options. When watching is
// enabled, the background watcher starts automatically.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, service.ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	companies := cfg.companies
	if cfg.companiesFile != "" {
		loaded, err := phantom.LoadCompanies(cfg.companiesFile)
		if err != nil {
			return nil, err
		}
		companies = loaded
	}

	ctx := context.Background()
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database url: %w", err)
	}

	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}
	if err := persistence.ValidateSchema(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	stores := storeFactory()

	// Scrape source: an explicit source wins, otherwise the vendor API.
	source := cfg.source
	closers := cfg.closers
	if source == nil && cfg.phantom.IsConfigured() {
		phantomOpts := []phantom.Option{
			phantom.WithBaseURL(cfg.phantom.BaseURL()),
			phantom.WithTimeout(cfg.phantom.Timeout()),
		}
		if cfg.httpCacheDir != "" {
			phantomOpts = append(phantomOpts, phantom.WithTransport(
				phantom.NewCachingTransport(cfg.httpCacheDir, http.DefaultTransport)))
		}
		source = phantom.NewClient(cfg.phantom.APIKey(), phantomOpts...)
	}

	// Disambiguation oracle: optional; without one, ambiguous name groups
	// stay unresolved until a human or a later batch settles them.
	oracle := cfg.oracle
	if oracle == nil && cfg.oracleCfg.IsConfigured() {
		oracle = provider.NewOpenAIProvider(cfg.oracleCfg.APIKey(),
			provider.WithModel(cfg.oracleCfg.Model()),
			provider.WithMaxRetries(cfg.oracleCfg.MaxRetries()),
			provider.WithInitialDelay(cfg.oracleCfg.InitialDelay()),
			provider.WithBackoffFactor(cfg.oracleCfg.BackoffFactor()),
			provider.WithLogger(logger),
		)
	}
	matcher := match.NewMatcher(oracle, logger)

	// The OpenAI provider doubles as the video-title parser.
	parser := cfg.parser
	if parser == nil {
		if p, ok := oracle.(service.TitleParser); ok {
			parser = p
		}
	}

	reportDir := cfg.reportDir
	if reportDir == "" {
		reportDir = filepath.Join(cfg.dataDir, "reports")
	}
	sink, err := reporting.NewCSVSink(reportDir)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("report sink: %w", err), errClose)
	}

	client := &Client{
		db:      db,
		closers: closers,
		logger:  logger,
	}

	client.Reconcile = service.NewReconciler(db, stores, source, cfg.phantom.EmployeesAgentID(),
		service.WithRecordFilter(phantom.EmployeeFilter(companies)),
		service.WithPrefetchWorkers(cfg.prefetchWorkers),
		service.WithReconcilerLogger(logger),
	)
	speakerOpts := []service.SpeakersOption{
		service.WithSearchSource(source, cfg.phantom.SearchExportAgentID()),
		service.WithSearchFilter(phantom.SearchExportFilter()),
		service.WithMatcher(matcher),
		service.WithSpeakersLogger(logger),
	}
	if parser != nil {
		speakerOpts = append(speakerOpts, service.WithTitleParser(parser))
	}
	client.Speakers = service.NewSpeakers(db, stores, speakerOpts...)
	client.Reports = service.NewReporter(db, stores, sink,
		service.WithReporterLogger(logger),
	)

	client.watcher = service.NewWatcher(cfg.watch, client.Reconcile, client.Reports, logger)
	client.watcher.Start(ctx)

	return client, nil
}

// Close stops the background watcher and releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return service.ErrClientClosed
	}

	c.watcher.Stop()

	// Close registered resources (e.g. caching transports)
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("talentwatch client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// storeFactory returns the StoreFactory backed by the persistence layer.
// The factory is invoked with transaction-scoped handles during folds, so
// it must stay cheap and stateless.
func storeFactory() service.StoreFactory {
	return func(db database.Database) service.Stores {
		s := persistence.NewStores(db)
		return service.Stores{
			People:        s.People,
			Companies:     s.Companies,
			Relationships: s.Relationships,
			Speakers:      s.Speakers,
			Talks:         s.Talks,
			Conferences:   s.Conferences,
			Ledger:        s.Ledger,
		}
	}
}

// buildDatabaseURL constructs the database URL from config.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		return cfg.dbDSN, nil
	default:
		return "", service.ErrNoDatabase
	}
}
