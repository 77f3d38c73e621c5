package persistence

import (
	"context"
	"fmt"

	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/internal/database"
)

// ConferenceStore implements speaker.ConferenceStore using GORM.
type ConferenceStore struct {
	db database.Database
}

// NewConferenceStore creates a new ConferenceStore.
func NewConferenceStore(db database.Database) ConferenceStore {
	return ConferenceStore{db: db}
}

// Exists checks whether the (name, year) conference was already ingested.
func (s ConferenceStore) Exists(ctx context.Context, name string, year int) (bool, error) {
	var count int64
	err := s.db.Session(ctx).
		Model(&ConferenceModel{}).
		Where("name = ? AND year = ?", name, year).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check conference exists: %w", err)
	}
	return count > 0, nil
}

// Create records the conference. A duplicate (name, year) reports
// speaker.ErrConferenceExists.
func (s ConferenceStore) Create(ctx context.Context, name string, year int) error {
	model := ConferenceModel{Name: name, Year: year}
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s %d", speaker.ErrConferenceExists, name, year)
		}
		return fmt.Errorf("create conference: %w", err)
	}
	return nil
}
