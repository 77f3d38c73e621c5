package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/internal/database"
	"gorm.io/gorm"
)

// PersonStore implements roster.PersonStore using GORM.
type PersonStore struct {
	database.Repository[roster.Person, PersonModel]
	mapper PersonMapper
}

// NewPersonStore creates a new PersonStore.
func NewPersonStore(db database.Database) PersonStore {
	mapper := PersonMapper{}
	return PersonStore{
		Repository: database.NewRepository[roster.Person, PersonModel](db, mapper, "person"),
		mapper:     mapper,
	}
}

// Save creates the person, or updates the existing row when the profile
// URL is already known.
func (s PersonStore) Save(ctx context.Context, person roster.Person) (roster.Person, error) {
	var existing PersonModel
	err := s.DB(ctx).Where("profile_url = ?", person.ProfileURL()).First(&existing).Error
	if err == nil {
		model := s.mapper.ToModel(person)
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if err := s.DB(ctx).Save(&model).Error; err != nil {
			return roster.Person{}, fmt.Errorf("update person: %w", err)
		}
		return s.mapper.ToDomain(model), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return roster.Person{}, fmt.Errorf("look up person: %w", err)
	}

	model := s.mapper.ToModel(person)
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		return roster.Person{}, fmt.Errorf("create person: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}
