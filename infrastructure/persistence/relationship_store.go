package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/internal/database"
	"gorm.io/gorm"
)

// RelationshipStore implements roster.RelationshipStore using GORM.
type RelationshipStore struct {
	database.Repository[roster.Relationship, RelationshipModel]
	mapper RelationshipMapper
}

// NewRelationshipStore creates a new RelationshipStore.
func NewRelationshipStore(db database.Database) RelationshipStore {
	mapper := RelationshipMapper{}
	return RelationshipStore{
		Repository: database.NewRepository[roster.Relationship, RelationshipModel](db, mapper, "relationship"),
		mapper:     mapper,
	}
}

// Save persists the relationship, keeping one row per (person, company)
// pair. A save for an already-known pair updates that row, including the
// case where two callers race on the first insert.
func (s RelationshipStore) Save(ctx context.Context, rel roster.Relationship) (roster.Relationship, error) {
	var existing RelationshipModel
	err := s.DB(ctx).
		Where("person_url = ? AND company_url = ?", rel.PersonURL(), rel.CompanyURL()).
		First(&existing).Error
	if err == nil {
		return s.update(ctx, rel, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return roster.Relationship{}, fmt.Errorf("look up relationship: %w", err)
	}

	model := s.mapper.ToModel(rel)
	model.ID = 0
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			var raced RelationshipModel
			if ferr := s.DB(ctx).
				Where("person_url = ? AND company_url = ?", rel.PersonURL(), rel.CompanyURL()).
				First(&raced).Error; ferr != nil {
				return roster.Relationship{}, fmt.Errorf("look up relationship after conflict: %w", ferr)
			}
			return s.update(ctx, rel, raced)
		}
		return roster.Relationship{}, fmt.Errorf("create relationship: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}

func (s RelationshipStore) update(ctx context.Context, rel roster.Relationship, existing RelationshipModel) (roster.Relationship, error) {
	model := s.mapper.ToModel(rel)
	model.ID = existing.ID
	model.CreatedAt = existing.CreatedAt
	if err := s.DB(ctx).Save(&model).Error; err != nil {
		return roster.Relationship{}, fmt.Errorf("update relationship: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}
