package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/store"
	"github.com/talentwatch/talentwatch/internal/database"
	"golang.org/x/sync/errgroup"
)

// RunResult summarizes what one reconciliation run folded into state.
type RunResult struct {
	// BatchesFolded counts batches durably folded and marked seen.
	BatchesFolded int
	// BatchesSkipped counts unseen batches left for the next run because
	// this run stopped early.
	BatchesSkipped int
	// RecordsFolded counts snapshot records applied to relationship state.
	RecordsFolded int
	// Created counts relationships created for newly observed pairs.
	Created int
	// Reconfirmed counts existing relationships re-observed as employed.
	Reconfirmed int
	// Departed counts relationships marked unemployed by absence.
	Departed int
}

// Add accumulates another result into this one.
func (r *RunResult) Add(other RunResult) {
	r.BatchesFolded += other.BatchesFolded
	r.BatchesSkipped += other.BatchesSkipped
	r.RecordsFolded += other.RecordsFolded
	r.Created += other.Created
	r.Reconfirmed += other.Reconfirmed
	r.Departed += other.Departed
}

// Reconciler folds unseen scrape batches into employment state. One run
// pulls the agent's unseen batches oldest first, prefetches their records in
// parallel, and folds them strictly in order; each batch's fold and its
// cursor advance commit in a single transaction.
type Reconciler struct {
	db      database.Database
	stores  StoreFactory
	source  scrape.Source
	filter  scrape.RecordFilter
	agentID string
	workers int
	logger  *slog.Logger

	mu sync.Mutex
}

// ReconcilerOption is a functional option for Reconciler.
type ReconcilerOption func(*Reconciler)

// WithRecordFilter sets the per-agent record filter.
func WithRecordFilter(f scrape.RecordFilter) ReconcilerOption {
	return func(r *Reconciler) { r.filter = f }
}

// WithPrefetchWorkers sets the number of parallel batch fetchers.
func WithPrefetchWorkers(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithReconcilerLogger sets the logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = logger }
}

// NewReconciler creates a Reconciler for one agent.
func NewReconciler(db database.Database, stores StoreFactory, source scrape.Source, agentID string, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		db:      db,
		stores:  stores,
		source:  source,
		agentID: agentID,
		workers: 4,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one reconciliation pass. A run that stops early still keeps
// everything committed so far; the remaining batches stay unseen and are
// retried on the next invocation.
func (r *Reconciler) Run(ctx context.Context) (RunResult, error) {
	if r.source == nil {
		return RunResult{}, ErrNoSource
	}
	if !r.mu.TryLock() {
		return RunResult{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	cursor := scrape.NewCursor(r.stores(r.db).Ledger, r.agentID)

	all, err := r.source.ListBatches(ctx, r.agentID)
	if err != nil {
		return RunResult{}, fmt.Errorf("list batches for agent %s: %w", r.agentID, err)
	}

	unseen, err := cursor.Unseen(ctx, all)
	if err != nil {
		return RunResult{}, fmt.Errorf("read batch ledger: %w", err)
	}
	if len(unseen) == 0 {
		r.logger.InfoContext(ctx, "no unseen batches", "agent_id", r.agentID)
		return RunResult{}, nil
	}
	r.logger.InfoContext(ctx, "processing unseen batches",
		"agent_id", r.agentID, "count", len(unseen), "total", len(all))

	fetched := r.prefetch(ctx, unseen)

	// Folding is strictly ordered: stopping at the first bad batch keeps
	// later observations from superseding state the failed batch should
	// have written first.
	var result RunResult
	for i, batch := range unseen {
		if fetched[i].err != nil {
			result.BatchesSkipped = len(unseen) - i
			return result, fmt.Errorf("fetch batch %s: %w", batch.ID(), fetched[i].err)
		}
		if err := r.foldBatch(ctx, batch, fetched[i].records, &result); err != nil {
			result.BatchesSkipped = len(unseen) - i
			return result, fmt.Errorf("fold batch %s: %w", batch.ID(), err)
		}
		result.BatchesFolded++
	}

	r.logger.InfoContext(ctx, "run complete",
		"agent_id", r.agentID,
		"batches", result.BatchesFolded,
		"records", result.RecordsFolded,
		"created", result.Created,
		"reconfirmed", result.Reconfirmed,
		"departed", result.Departed)
	return result, nil
}

type fetchedBatch struct {
	records []scrape.Record
	err     error
}

// prefetch fetches all unseen batches with bounded parallelism. Fetch
// errors are collected per batch rather than aborting the group, so the
// ordered fold below can still consume the prefix that succeeded.
func (r *Reconciler) prefetch(ctx context.Context, batches []scrape.Batch) []fetchedBatch {
	results := make([]fetchedBatch, len(batches))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			records, err := r.source.FetchBatch(ctx, batch.ID())
			results[i] = fetchedBatch{records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Reconciler) foldBatch(ctx context.Context, batch scrape.Batch, records []scrape.Record, result *RunResult) error {
	if r.filter != nil {
		records = r.filter.Filter(records)
	}
	snapshot := scrape.NewSnapshot(records, batch.FetchedAt())

	return database.WithDatabaseTransaction(ctx, r.db, func(txdb database.Database) error {
		stores := r.stores(txdb)

		if !snapshot.Empty() {
			if err := r.foldPresent(ctx, stores, snapshot, result); err != nil {
				return err
			}
			if err := r.foldAbsent(ctx, stores, snapshot, result); err != nil {
				return err
			}
		} else {
			r.logger.DebugContext(ctx, "empty batch", "batch_id", batch.ID())
		}

		// Inside the fold transaction: if anything above rolls back, the
		// batch stays unseen and is reprocessed next run.
		return stores.Ledger.MarkSeen(ctx, r.agentID, batch.ID())
	})
}

// foldPresent applies the snapshot's observed (person, company) pairs at
// the snapshot's logical timestamp.
func (r *Reconciler) foldPresent(ctx context.Context, stores Stores, snapshot scrape.Snapshot, result *RunResult) error {
	t := snapshot.ObservedAt()

	for _, rec := range snapshot.Records() {
		if rec.ProfileURL() == "" {
			continue
		}

		rel, err := stores.Relationships.FindOne(ctx,
			store.WithPersonURL(rec.ProfileURL()),
			store.WithCompanyURL(rec.Query()),
		)
		switch {
		case errors.Is(err, database.ErrNotFound):
			person := roster.NewPerson(rec.ProfileURL(), rec.Name()).
				WithDetails(rec.FirstName(), rec.LastName(), rec.Title(), rec.Location())
			if _, err := stores.People.Save(ctx, person); err != nil {
				return fmt.Errorf("save person %s: %w", rec.ProfileURL(), err)
			}
			company := roster.NewCompany(rec.Query(), rec.Company())
			if _, err := stores.Companies.Save(ctx, company); err != nil {
				return fmt.Errorf("save company %s: %w", rec.Query(), err)
			}
			if _, err := stores.Relationships.Save(ctx, roster.NewRelationship(rec.ProfileURL(), rec.Query(), t)); err != nil {
				return fmt.Errorf("create relationship: %w", err)
			}
			result.Created++

		case err != nil:
			return fmt.Errorf("look up relationship: %w", err)

		default:
			observed, changed := rel.Observe(t)
			if changed {
				if _, err := stores.Relationships.Save(ctx, observed); err != nil {
					return fmt.Errorf("update relationship: %w", err)
				}
				result.Reconfirmed++
			}
		}
		result.RecordsFolded++
	}
	return nil
}

// foldAbsent marks people departed when a re-scraped company's snapshot no
// longer lists them. Only companies present in this snapshot are examined.
func (r *Reconciler) foldAbsent(ctx context.Context, stores Stores, snapshot scrape.Snapshot, result *RunResult) error {
	companies := snapshot.Companies()
	if len(companies) == 0 {
		return nil
	}
	observed := snapshot.ObservedProfiles()
	t := snapshot.ObservedAt()

	rels, err := stores.Relationships.Find(ctx, store.WithCompanyURLIn(companies))
	if err != nil {
		return fmt.Errorf("list relationships for snapshot companies: %w", err)
	}

	for _, rel := range rels {
		if _, ok := observed[rel.PersonURL()]; ok {
			continue
		}
		departed, changed := rel.MarkDeparted(t)
		if !changed {
			continue
		}
		if _, err := stores.Relationships.Save(ctx, departed); err != nil {
			return fmt.Errorf("mark departed: %w", err)
		}
		result.Departed++
	}
	return nil
}
