package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/internal/database"
	"github.com/talentwatch/talentwatch/internal/testdb"
)

type fakeSink struct {
	mu     sync.Mutex
	tables map[string][][]string
	header map[string][]string
}

func (f *fakeSink) Publish(_ context.Context, table string, header []string, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables == nil {
		f.tables = map[string][][]string{}
		f.header = map[string][]string{}
	}
	f.tables[table] = rows
	f.header[table] = header
	return nil
}

func seedEmployees(t *testing.T, db database.Database) {
	t.Helper()
	ctx := context.Background()
	stores := storeFactory(db)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	acme := "https://linkedin.com/company/acme"

	_, err := stores.People.Save(ctx, roster.NewPerson("https://linkedin.com/in/ada", "Ada Lovelace").
		WithDetails("Ada", "Lovelace", "Engineer", "London"))
	require.NoError(t, err)
	_, err = stores.People.Save(ctx, roster.NewPerson("https://linkedin.com/in/grace", "Grace Hopper"))
	require.NoError(t, err)

	// Ada still employed, Grace departed.
	_, err = stores.Relationships.Save(ctx, roster.NewRelationship("https://linkedin.com/in/ada", acme, t1))
	require.NoError(t, err)
	grace := roster.NewRelationship("https://linkedin.com/in/grace", acme, t1)
	grace, _ = grace.MarkDeparted(t2)
	_, err = stores.Relationships.Save(ctx, grace)
	require.NoError(t, err)
}

func TestReporter_PublishEmployees(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	seedEmployees(t, db)

	sink := &fakeSink{}
	reporter := NewReporter(db, storeFactory, sink)
	require.NoError(t, reporter.PublishEmployees(ctx))

	all := sink.tables[TableEmployees]
	require.Len(t, all, 2)
	assert.Equal(t, []string{"profile_url", "name", "description", "location", "companies", "label"},
		sink.header[TableEmployees])

	// Sorted by name: Ada first.
	assert.Equal(t, "Ada Lovelace", all[0][1])
	assert.Equal(t, "Engineer", all[0][2])
	assert.Equal(t, string(roster.LabelUnchanged), all[0][5])
	assert.Contains(t, all[0][4], `"employment_status":"Employed"`)
	assert.Contains(t, all[0][4], "2026-03-01 12:00:00")

	former := sink.tables[TableFormerEmployees]
	require.Len(t, former, 1)
	assert.Equal(t, "Grace Hopper", former[0][1])
	assert.Equal(t, string(roster.LabelFormer), former[0][5])
}

func TestReporter_PublishEmployees_MultiCompanyLabel(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	stores := storeFactory(db)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := stores.People.Save(ctx, roster.NewPerson("https://linkedin.com/in/ada", "Ada Lovelace"))
	require.NoError(t, err)
	_, err = stores.Relationships.Save(ctx,
		roster.NewRelationship("https://linkedin.com/in/ada", "https://linkedin.com/company/acme", t1))
	require.NoError(t, err)
	_, err = stores.Relationships.Save(ctx,
		roster.NewRelationship("https://linkedin.com/in/ada", "https://linkedin.com/company/initech", t1))
	require.NoError(t, err)

	sink := &fakeSink{}
	reporter := NewReporter(db, storeFactory, sink)
	require.NoError(t, reporter.PublishEmployees(ctx))

	all := sink.tables[TableEmployees]
	require.Len(t, all, 1)
	assert.Equal(t, string(roster.LabelMultiCompany), all[0][5])
	assert.Empty(t, sink.tables[TableFormerEmployees])
}

func TestReporter_PublishSpeakers(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	seedEmployees(t, db)
	stores := storeFactory(db)

	// Grace spoke twice; her LinkedIn profile ties her to the departed
	// employment row. The duplicate talk row collapses to one column pair.
	_, err := stores.Speakers.Save(ctx,
		speaker.NewSpeaker("Grace Hopper", "https://gracehopper.example").
			WithProfileURL("https://linkedin.com/in/grace"))
	require.NoError(t, err)
	for _, talk := range []speaker.Talk{
		speaker.NewTalk("Grace Hopper", "GopherCon", 2025, "Compilers", ""),
		speaker.NewTalk("Grace Hopper", "GopherCon", 2025, "Compilers", ""),
		speaker.NewTalk("Grace Hopper", "GopherCon", 2026, "Debugging", ""),
	} {
		_, err = stores.Talks.Save(ctx, talk)
		require.NoError(t, err)
	}

	sink := &fakeSink{}
	reporter := NewReporter(db, storeFactory, sink)
	require.NoError(t, reporter.PublishSpeakers(ctx))

	assert.Equal(t,
		[]string{"name", "website_url", "linkedin_url", "conference_1", "talk_1", "conference_2", "talk_2", "companies", "label"},
		sink.header[TableSpeakers])

	all := sink.tables[TableSpeakers]
	require.Len(t, all, 1)
	row := all[0]
	assert.Equal(t, "Grace Hopper", row[0])
	assert.Equal(t, "GopherCon_2025", row[3])
	assert.Equal(t, "Compilers", row[4])
	assert.Equal(t, "GopherCon_2026", row[5])
	assert.Equal(t, "Debugging", row[6])
	assert.Equal(t, string(roster.LabelFormer), row[8])

	former := sink.tables[TableFormerSpeakers]
	require.Len(t, former, 1)
}

func TestReporter_PublishSpeakers_NoDataIsNoOp(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	sink := &fakeSink{}
	reporter := NewReporter(db, storeFactory, sink)
	require.NoError(t, reporter.PublishSpeakers(ctx))
	assert.Empty(t, sink.tables)
}
