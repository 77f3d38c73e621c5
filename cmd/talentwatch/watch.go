package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/talentwatch/talentwatch"
)

func watchCmd() *cobra.Command {
	var (
		envFile  string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile continuously on a timer",
		Long: `Reconcile continuously on a timer.

Runs a reconciliation pass immediately and then on every interval, refreshing
the report tables whenever new batches were folded. Runs until interrupted.

Environment variables:
  WATCH_ENABLED            Enable the watcher (default: true)
  WATCH_INTERVAL_SECONDS   Seconds between passes (default: 1800)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(envFile, interval)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between passes (overrides WATCH_INTERVAL_SECONDS)")

	return cmd
}

func runWatch(envFile string, interval time.Duration) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	watch := cfg.Watch().WithEnabled(true)
	if interval > 0 {
		watch = watch.WithInterval(interval)
	}

	client, err := newClient(cfg, talentwatch.WithWatch(watch))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("Watching every %s, press Ctrl+C to stop\n", watch.Interval())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return nil
}
