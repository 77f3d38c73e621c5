package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/internal/database"
	"gorm.io/gorm"
)

// TalkStore implements speaker.TalkStore using GORM.
type TalkStore struct {
	database.Repository[speaker.Talk, TalkModel]
	mapper TalkMapper
}

// NewTalkStore creates a new TalkStore.
func NewTalkStore(db database.Database) TalkStore {
	mapper := TalkMapper{}
	return TalkStore{
		Repository: database.NewRepository[speaker.Talk, TalkModel](db, mapper, "talk"),
		mapper:     mapper,
	}
}

// Save persists the talk. Talks deduplicate on (conference, year, title);
// saving an already-known talk returns the stored row unchanged.
func (s TalkStore) Save(ctx context.Context, talk speaker.Talk) (speaker.Talk, error) {
	var existing TalkModel
	err := s.DB(ctx).
		Where("conference_name = ? AND conference_year = ? AND title = ?",
			talk.Conference(), talk.Year(), talk.Title()).
		First(&existing).Error
	if err == nil {
		return s.mapper.ToDomain(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return speaker.Talk{}, fmt.Errorf("look up talk: %w", err)
	}

	model := s.mapper.ToModel(talk)
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			var raced TalkModel
			if ferr := s.DB(ctx).
				Where("conference_name = ? AND conference_year = ? AND title = ?",
					talk.Conference(), talk.Year(), talk.Title()).
				First(&raced).Error; ferr != nil {
				return speaker.Talk{}, fmt.Errorf("look up talk after conflict: %w", ferr)
			}
			return s.mapper.ToDomain(raced), nil
		}
		return speaker.Talk{}, fmt.Errorf("create talk: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}
