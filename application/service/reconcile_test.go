package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/store"
	"github.com/talentwatch/talentwatch/infrastructure/persistence"
	"github.com/talentwatch/talentwatch/internal/database"
	"github.com/talentwatch/talentwatch/internal/testdb"
)

const testAgentID = "agent-employees"

type fakeSource struct {
	mu      sync.Mutex
	batches []scrape.Batch
	records map[string][]scrape.Record
	errs    map[string]error
	fetches int
}

func (f *fakeSource) ListBatches(_ context.Context, _ string) ([]scrape.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]scrape.Batch, len(f.batches))
	copy(result, f.batches)
	return result, nil
}

func (f *fakeSource) FetchBatch(_ context.Context, batchID string) ([]scrape.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if err := f.errs[batchID]; err != nil {
		return nil, err
	}
	return f.records[batchID], nil
}

func (f *fakeSource) addBatch(id string, fetchedAt time.Time, records ...scrape.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, scrape.NewBatch(id, fetchedAt))
	if f.records == nil {
		f.records = map[string][]scrape.Record{}
	}
	f.records[id] = records
}

func (f *fakeSource) failBatch(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = map[string]error{}
	}
	f.errs[id] = err
}

func storeFactory(db database.Database) Stores {
	s := persistence.NewStores(db)
	return Stores{
		People:        s.People,
		Companies:     s.Companies,
		Relationships: s.Relationships,
		Speakers:      s.Speakers,
		Talks:         s.Talks,
		Conferences:   s.Conferences,
		Ledger:        s.Ledger,
	}
}

func employeeRecord(company, profileURL, name string) scrape.Record {
	return scrape.NewRecord(company, profileURL, name)
}

func TestReconciler_Run_CreatesRelationships(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	source.addBatch("b1", t1,
		employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/ada", "Ada Lovelace"),
		employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/grace", "Grace Hopper"),
	)

	r := NewReconciler(db, storeFactory, source, testAgentID)
	result, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.BatchesFolded)
	assert.Equal(t, 2, result.RecordsFolded)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Reconfirmed)
	assert.Equal(t, 0, result.Departed)

	stores := storeFactory(db)
	rel, err := stores.Relationships.FindOne(ctx,
		store.WithPersonURL("https://linkedin.com/in/ada"),
		store.WithCompanyURL("https://linkedin.com/company/acme"),
	)
	require.NoError(t, err)
	assert.Equal(t, roster.Employed, rel.Status())
	assert.Equal(t, 0, rel.UpdateCount())
	assert.True(t, rel.LastUpdated().Equal(t1))
}

func TestReconciler_Run_SameBatchTwiceIsNoOp(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	source := &fakeSource{}
	source.addBatch("b1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/ada", "Ada Lovelace"),
	)

	r := NewReconciler(db, storeFactory, source, testAgentID)
	first, err := r.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	second, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.BatchesFolded)
	assert.Zero(t, second.RecordsFolded)

	rel, err := storeFactory(db).Relationships.FindOne(ctx,
		store.WithPersonURL("https://linkedin.com/in/ada"),
		store.WithCompanyURL("https://linkedin.com/company/acme"),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, rel.UpdateCount())
}

func TestReconciler_Run_ReconfirmsOnLaterSnapshot(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	ada := employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/ada", "Ada Lovelace")

	source := &fakeSource{}
	source.addBatch("b1", t1, ada)
	source.addBatch("b2", t2, ada)

	r := NewReconciler(db, storeFactory, source, testAgentID)
	result, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.BatchesFolded)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Reconfirmed)

	rel, err := storeFactory(db).Relationships.FindOne(ctx,
		store.WithPersonURL("https://linkedin.com/in/ada"),
		store.WithCompanyURL("https://linkedin.com/company/acme"),
	)
	require.NoError(t, err)
	assert.Equal(t, roster.Employed, rel.Status())
	assert.Equal(t, 1, rel.UpdateCount())
	assert.True(t, rel.LastUpdated().Equal(t2))
}

func TestReconciler_Run_MarksDepartures(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	acme := "https://linkedin.com/company/acme"

	source := &fakeSource{}
	source.addBatch("b1", t1,
		employeeRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
		employeeRecord(acme, "https://linkedin.com/in/grace", "Grace Hopper"),
	)
	// Grace is gone from the re-scrape.
	source.addBatch("b2", t2,
		employeeRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
	)

	r := NewReconciler(db, storeFactory, source, testAgentID)
	result, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Departed)

	rel, err := storeFactory(db).Relationships.FindOne(ctx,
		store.WithPersonURL("https://linkedin.com/in/grace"),
		store.WithCompanyURL(acme),
	)
	require.NoError(t, err)
	assert.Equal(t, roster.Unemployed, rel.Status())
	assert.Equal(t, 1, rel.UpdateCount())
	assert.True(t, rel.LastUpdated().Equal(t2))
	assert.Equal(t, roster.LabelFormer, rel.Label())
}

func TestReconciler_Run_AbsenceScopedToSnapshotCompanies(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	acme := "https://linkedin.com/company/acme"
	initech := "https://linkedin.com/company/initech"

	source := &fakeSource{}
	source.addBatch("b1", t1,
		employeeRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
		employeeRecord(initech, "https://linkedin.com/in/grace", "Grace Hopper"),
	)
	// Only acme is re-scraped; Grace's absence says nothing about initech.
	source.addBatch("b2", t2,
		employeeRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
	)

	r := NewReconciler(db, storeFactory, source, testAgentID)
	result, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Departed)

	rel, err := storeFactory(db).Relationships.FindOne(ctx,
		store.WithPersonURL("https://linkedin.com/in/grace"),
		store.WithCompanyURL(initech),
	)
	require.NoError(t, err)
	assert.Equal(t, roster.Employed, rel.Status())
}

func TestReconciler_Run_StopsAtFailedBatch(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	acme := "https://linkedin.com/company/acme"

	source := &fakeSource{}
	source.addBatch("b1", t1,
		employeeRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
	)
	source.addBatch("b2", t1.Add(time.Hour),
		employeeRecord(acme, "https://linkedin.com/in/grace", "Grace Hopper"),
	)
	source.addBatch("b3", t1.Add(2*time.Hour),
		employeeRecord(acme, "https://linkedin.com/in/ada", "Ada Lovelace"),
	)
	source.failBatch("b2", scrape.ErrUnavailable)

	r := NewReconciler(db, storeFactory, source, testAgentID)
	result, err := r.Run(ctx)
	require.ErrorIs(t, err, scrape.ErrUnavailable)

	// The prefix before the failure stays committed.
	assert.Equal(t, 1, result.BatchesFolded)
	assert.Equal(t, 2, result.BatchesSkipped)

	seen, err := storeFactory(db).Ledger.SeenIDs(ctx, testAgentID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, seen)

	// Once the source recovers, the remainder folds in order.
	source.failBatch("b2", nil)
	result, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.BatchesFolded)

	seen, err = storeFactory(db).Ledger.SeenIDs(ctx, testAgentID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "b2", "b3"}, seen)
}

func TestReconciler_Run_AppliesRecordFilter(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	source := &fakeSource{}
	source.addBatch("b1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/ada", "Ada Lovelace"),
		employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/bad", "Bad Row").WithError("profile not found"),
	)

	filter := scrape.RecordFilterFunc(func(records []scrape.Record) []scrape.Record {
		kept := make([]scrape.Record, 0, len(records))
		for _, rec := range records {
			if !rec.Failed() {
				kept = append(kept, rec)
			}
		}
		return kept
	})

	r := NewReconciler(db, storeFactory, source, testAgentID, WithRecordFilter(filter))
	result, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RecordsFolded)
	assert.Equal(t, 1, result.Created)

	exists, err := storeFactory(db).People.Exists(ctx, store.WithProfileURL("https://linkedin.com/in/bad"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReconciler_Run_RejectsConcurrentRun(t *testing.T) {
	db := testdb.New(t)
	source := &fakeSource{}

	r := NewReconciler(db, storeFactory, source, testAgentID)
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}
