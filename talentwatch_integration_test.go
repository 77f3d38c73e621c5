package talentwatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch"
	"github.com/talentwatch/talentwatch/application/service"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/speaker"
)

// stubSource serves canned batches for both the employee and search agents.
type stubSource struct {
	batches map[string][]scrape.Batch
	records map[string][]scrape.Record
}

func (s *stubSource) ListBatches(_ context.Context, agentID string) ([]scrape.Batch, error) {
	return s.batches[agentID], nil
}

func (s *stubSource) FetchBatch(_ context.Context, batchID string) ([]scrape.Record, error) {
	return s.records[batchID], nil
}

func newTestClient(t *testing.T, source scrape.Source) (*talentwatch.Client, string) {
	t.Helper()

	dataDir := t.TempDir()
	reportDir := filepath.Join(dataDir, "reports")
	client, err := talentwatch.New(
		talentwatch.WithSQLite(filepath.Join(dataDir, "test.db")),
		talentwatch.WithDataDir(dataDir),
		talentwatch.WithReportDir(reportDir),
		talentwatch.WithSource(source),
		talentwatch.WithCompanies(map[string]string{
			"https://linkedin.com/company/acme": "Acme Corp",
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, reportDir
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	acme := "https://linkedin.com/company/acme"

	source := &stubSource{
		batches: map[string][]scrape.Batch{
			// Agent IDs default to empty when no vendor is configured; the
			// stub serves its batches under that key.
			"": {scrape.NewBatch("b1", t1), scrape.NewBatch("b2", t2)},
		},
		records: map[string][]scrape.Record{
			"b1": {
				scrape.NewRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
				scrape.NewRecord(acme, "https://linkedin.com/in/grace", "Grace Hopper"),
			},
			"b2": {
				scrape.NewRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
			},
		},
	}

	client, reportDir := newTestClient(t, source)

	result, err := client.Reconcile.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.BatchesFolded)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Departed)

	// Speakers join the same state through their resolved profile URLs.
	err = client.Speakers.Ingest(ctx, service.ConferenceIngest{
		Name: "StrangeLoop",
		Year: 2026,
		Speakers: []speaker.Speaker{
			speaker.NewSpeaker("Grace Hopper", ""),
		},
		Talks: []speaker.Talk{
			speaker.NewTalk("Grace Hopper", "StrangeLoop", 2026, "Nanoseconds", ""),
		},
	})
	require.NoError(t, err)

	updated, err := client.Speakers.MatchKnownPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	require.NoError(t, client.Reports.PublishAll(ctx))

	// Grace departed, so she appears in both former tables.
	former, err := os.ReadFile(filepath.Join(reportDir, "company_employees_former.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(former), "Grace Hopper")

	formerSpeakers, err := os.ReadFile(filepath.Join(reportDir, "conference_speakers_former.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(formerSpeakers), "Nanoseconds")
}

func TestClient_ReportsWrittenToDisk(t *testing.T) {
	ctx := context.Background()

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSource{
		batches: map[string][]scrape.Batch{"": {scrape.NewBatch("b1", t1)}},
		records: map[string][]scrape.Record{
			"b1": {scrape.NewRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/ada", "Ada Lovelace")},
		},
	}

	dataDir := t.TempDir()
	client, err := talentwatch.New(
		talentwatch.WithSQLite(filepath.Join(dataDir, "test.db")),
		talentwatch.WithDataDir(dataDir),
		talentwatch.WithReportDir(filepath.Join(dataDir, "reports")),
		talentwatch.WithSource(source),
	)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = client.Reconcile.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Reports.PublishAll(ctx))

	data, err := os.ReadFile(filepath.Join(dataDir, "reports", "company_employees.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ada Lovelace")
}

func TestClient_CloseTwice(t *testing.T) {
	source := &stubSource{}
	dataDir := t.TempDir()
	client, err := talentwatch.New(
		talentwatch.WithSQLite(filepath.Join(dataDir, "test.db")),
		talentwatch.WithDataDir(dataDir),
		talentwatch.WithSource(source),
	)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), service.ErrClientClosed)
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := talentwatch.New(talentwatch.WithDataDir(t.TempDir()))
	assert.ErrorIs(t, err, service.ErrNoDatabase)
}
