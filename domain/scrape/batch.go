// Package scrape models raw scraped data: batches fetched from a vendor
// agent, the records they contain, and the cursor that guarantees each batch
// is folded into state at most once.
package scrape

import (
	"sort"
	"time"
)

// Batch is one unit of newly fetched raw data, identified by an opaque
// container ID assigned by the source when an ingestion job completes.
// Batches are never mutated or deleted; the ledger of seen IDs is
// append-only so repeated runs stay idempotent.
type Batch struct {
	id        string
	fetchedAt time.Time
}

// NewBatch creates a Batch.
func NewBatch(id string, fetchedAt time.Time) Batch {
	return Batch{id: id, fetchedAt: fetchedAt}
}

// ID returns the opaque batch identifier.
func (b Batch) ID() string { return b.id }

// FetchedAt returns when the source produced the batch.
func (b Batch) FetchedAt() time.Time { return b.fetchedAt }

// Unseen returns the batches whose IDs are not in seen, ordered oldest
// first, so later observations always supersede earlier ones when folded
// into state. Ties on fetch time fall back to ID order.
func Unseen(all []Batch, seen []string) []Batch {
	seenSet := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		seenSet[id] = struct{}{}
	}

	var unseen []Batch
	for _, b := range all {
		if _, ok := seenSet[b.id]; !ok {
			unseen = append(unseen, b)
		}
	}

	sort.Slice(unseen, func(i, j int) bool {
		if !unseen[i].fetchedAt.Equal(unseen[j].fetchedAt) {
			return unseen[i].fetchedAt.Before(unseen[j].fetchedAt)
		}
		return unseen[i].id < unseen[j].id
	})
	return unseen
}
