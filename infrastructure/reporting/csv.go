// Package reporting writes published tables to local CSV files.
package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVSink publishes report tables as CSV files under a directory. Each
// publish rewrites the whole file, so repeated runs converge on the same
// content instead of appending.
type CSVSink struct {
	dir string
}

// NewCSVSink creates a CSVSink writing under dir.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// Publish writes the table atomically: a temp file is written first and
// renamed over the target, so readers never see a half-written report.
func (s *CSVSink) Publish(ctx context.Context, table string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.dir, fileName(table))
	tmp, err := os.CreateTemp(s.dir, fileName(table)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish report %s: %w", table, err)
	}
	return nil
}

// Path returns where a table is published.
func (s *CSVSink) Path(table string) string {
	return filepath.Join(s.dir, fileName(table))
}

func fileName(table string) string {
	name := strings.ToLower(table)
	name = strings.ReplaceAll(name, " ", "_")
	return name + ".csv"
}
