package persistence

import (
	"context"
	"fmt"

	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/internal/database"
)

// SpeakerStore implements speaker.SpeakerStore using GORM.
type SpeakerStore struct {
	database.Repository[speaker.Speaker, SpeakerModel]
	mapper SpeakerMapper
}

// NewSpeakerStore creates a new SpeakerStore.
func NewSpeakerStore(db database.Database) SpeakerStore {
	mapper := SpeakerMapper{}
	return SpeakerStore{
		Repository: database.NewRepository[speaker.Speaker, SpeakerModel](db, mapper, "speaker"),
		mapper:     mapper,
	}
}

// Save persists the speaker. The name is the primary key, so saving an
// existing speaker updates that row in place.
func (s SpeakerStore) Save(ctx context.Context, sp speaker.Speaker) (speaker.Speaker, error) {
	model := s.mapper.ToModel(sp)
	if err := s.DB(ctx).Save(&model).Error; err != nil {
		return speaker.Speaker{}, fmt.Errorf("save speaker: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}
