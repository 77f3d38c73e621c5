// Package main is the entry point for the talentwatch CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/talentwatch/talentwatch"
	"github.com/talentwatch/talentwatch/internal/config"
	"github.com/talentwatch/talentwatch/internal/log"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "talentwatch",
		Short: "Track employment state for people at watched companies",
		Long:  `Talentwatch folds scraped company rosters into a durable employment state machine and publishes the results as report tables. Conference speakers ride the same pipeline and are resolved to profiles via people-search batches.`,
	}

	cmd.AddCommand(reconcileCmd())
	cmd.AddCommand(speakersCmd())
	cmd.AddCommand(reportCmd())
	cmd.AddCommand(watchCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newClient builds a talentwatch client from the loaded configuration and
// sets up the process-wide logger.
func newClient(cfg config.AppConfig, extra ...talentwatch.Option) (*talentwatch.Client, error) {
	logger := log.Configure(cfg)

	opts := []talentwatch.Option{
		talentwatch.WithDataDir(cfg.DataDir()),
		talentwatch.WithReportDir(cfg.ReportDir()),
		talentwatch.WithPrefetchWorkers(cfg.PrefetchWorkers()),
		talentwatch.WithPhantomBuster(cfg.Phantom()),
		talentwatch.WithOpenAI(cfg.Oracle()),
		talentwatch.WithLogger(logger.Slog()),
	}
	opts = append(opts, storageOption(cfg))

	if cfg.HTTPCacheDir() != "" {
		opts = append(opts, talentwatch.WithHTTPCache(cfg.HTTPCacheDir()))
	}
	if cfg.CompaniesFile() != "" {
		opts = append(opts, talentwatch.WithCompaniesFile(cfg.CompaniesFile()))
	}
	opts = append(opts, extra...)

	return talentwatch.New(opts...)
}

// storageOption maps the configured database URL onto a storage option.
func storageOption(cfg config.AppConfig) talentwatch.Option {
	dbURL := cfg.DBURL()
	if dbURL != "" && !isSQLite(dbURL) {
		return talentwatch.WithPostgres(dbURL)
	}

	dbPath := cfg.DataDir() + "/talentwatch.db"
	if dbURL != "" && isSQLite(dbURL) {
		dbPath = strings.TrimPrefix(dbURL, "sqlite:///")
		if dbPath == dbURL {
			dbPath = strings.TrimPrefix(dbURL, "sqlite:")
		}
	}
	return talentwatch.WithSQLite(dbPath)
}

func isSQLite(dbURL string) bool {
	return strings.HasPrefix(dbURL, "sqlite:")
}
