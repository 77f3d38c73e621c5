package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/talentwatch/talentwatch/internal/log"
)

func reconcileCmd() *cobra.Command {
	var (
		envFile string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fold unseen employee batches into employment state",
		Long: `Fold unseen employee batches into employment state.

Lists the employee agent's result batches, skips the ones already consumed,
and folds the rest oldest-first. Each batch commits atomically together with
its ledger entry, so an interrupted run resumes where it stopped.

Environment variables:
  DATA_DIR                       Data directory (default: ~/.talentwatch)
  DB_URL                         Database URL (default: sqlite:///{data_dir}/talentwatch.db)
  LOG_LEVEL                      Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                     Log format: pretty, json (default: pretty)
  REPORT_DIR                     Report output directory (default: {data_dir}/reports)
  HTTP_CACHE_DIR                 On-disk cache for vendor API responses
  COMPANIES_FILE                 CSV of watched company profile URLs
  PREFETCH_WORKERS               Parallel batch fetchers (default: 4)

  PHANTOM_API_KEY                Vendor API key
  PHANTOM_BASE_URL               Vendor API base URL
  PHANTOM_EMPLOYEES_AGENT_ID     Company-employees agent
  PHANTOM_SEARCH_EXPORT_AGENT_ID People-search agent
  PHANTOM_TIMEOUT                Request timeout in seconds (default: 60)

  OPENAI_API_KEY                 Disambiguation oracle API key
  OPENAI_MODEL                   Oracle model (default: gpt-4o-mini)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(envFile, publish)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish report tables after reconciling")

	return cmd
}

func runReconcile(envFile string, publish bool) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := log.WithRunID(context.Background())

	result, err := client.Reconcile.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	fmt.Printf("Folded %d batches (%d records): %d created, %d reconfirmed, %d departed\n",
		result.BatchesFolded, result.RecordsFolded,
		result.Created, result.Reconfirmed, result.Departed)

	if publish {
		if err := client.Reports.PublishAll(ctx); err != nil {
			return fmt.Errorf("publish reports: %w", err)
		}
	}
	return nil
}
