package scrape

import (
	"context"
	"errors"
)

// ErrUnavailable indicates a transient source failure (network error,
// rate limit). Nothing has been folded; the whole batch is retried on the
// next run.
var ErrUnavailable = errors.New("scrape source unavailable")

// Source lists and fetches raw data batches from a scraping vendor agent.
// Batch IDs are opaque and creation-ordered.
type Source interface {
	ListBatches(ctx context.Context, agentID string) ([]Batch, error)
	FetchBatch(ctx context.Context, batchID string) ([]Record, error)
}

// RecordFilter shapes one source type's raw records before matching and
// folding. One implementation exists per agent type, held by composition.
type RecordFilter interface {
	Filter(records []Record) []Record
}

// RecordFilterFunc adapts a function to the RecordFilter interface.
type RecordFilterFunc func(records []Record) []Record

// Filter implements RecordFilter.
func (f RecordFilterFunc) Filter(records []Record) []Record { return f(records) }

// Ledger persists the append-only set of batch IDs already folded into
// state. It survives process restarts.
type Ledger interface {
	// SeenIDs returns every batch ID previously marked seen for the agent.
	SeenIDs(ctx context.Context, agentID string) ([]string, error)
	// MarkSeen records a batch as consumed. Called only after the batch's
	// records have been durably folded; if folding fails the batch must
	// remain unseen so a retry reprocesses it.
	MarkSeen(ctx context.Context, agentID, batchID string) error
}

// Cursor tracks which batches of an agent have been consumed, guaranteeing
// at-most-once ingestion per batch across repeated invocations.
type Cursor struct {
	ledger  Ledger
	agentID string
}

// NewCursor creates a Cursor over the given ledger and agent.
func NewCursor(ledger Ledger, agentID string) Cursor {
	return Cursor{ledger: ledger, agentID: agentID}
}

// AgentID returns the agent this cursor tracks.
func (c Cursor) AgentID() string { return c.agentID }

// Unseen filters all down to the batches not yet consumed, oldest first.
func (c Cursor) Unseen(ctx context.Context, all []Batch) ([]Batch, error) {
	seen, err := c.ledger.SeenIDs(ctx, c.agentID)
	if err != nil {
		return nil, err
	}
	return Unseen(all, seen), nil
}

// MarkSeen records a batch as consumed.
func (c Cursor) MarkSeen(ctx context.Context, batchID string) error {
	return c.ledger.MarkSeen(ctx, c.agentID, batchID)
}
