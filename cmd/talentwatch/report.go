package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/talentwatch/talentwatch/internal/log"
)

func reportCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Publish the employee and speaker report tables",
		Long: `Publish the employee and speaker report tables.

Writes four CSV files to the report directory: all employees, former
employees, conference speakers with their talks, and former-employee
speakers. Files are rewritten atomically from current state on every run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runReport(envFile string) error {
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
	if err := client.Reports.PublishAll(ctx); err != nil {
		return fmt.Errorf("publish reports: %w", err)
	}

	fmt.Printf("Report tables written to %s\n", cfg.ReportDir())
	return nil
}
