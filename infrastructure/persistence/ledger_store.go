package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/talentwatch/talentwatch/internal/database"
)

// LedgerStore implements scrape.Ledger using GORM. Rows are append-only;
// marking a batch seen twice is a no-op.
type LedgerStore struct {
	db database.Database
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(db database.Database) LedgerStore {
	return LedgerStore{db: db}
}

// SeenIDs returns every batch ID previously marked seen for the agent.
func (s LedgerStore) SeenIDs(ctx context.Context, agentID string) ([]string, error) {
	var ids []string
	err := s.db.Session(ctx).
		Model(&SeenBatchModel{}).
		Where("agent_id = ?", agentID).
		Order("seen_at ASC").
		Pluck("batch_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list seen batches: %w", err)
	}
	return ids, nil
}

// MarkSeen records a batch as consumed for the agent.
func (s LedgerStore) MarkSeen(ctx context.Context, agentID, batchID string) error {
	model := SeenBatchModel{
		AgentID: agentID,
		BatchID: batchID,
		SeenAt:  time.Now().UTC(),
	}
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("mark batch seen: %w", err)
	}
	return nil
}
