package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/internal/database"
	"gorm.io/gorm"
)

// CompanyStore implements roster.CompanyStore using GORM.
type CompanyStore struct {
	database.Repository[roster.Company, CompanyModel]
	mapper CompanyMapper
}

// NewCompanyStore creates a new CompanyStore.
func NewCompanyStore(db database.Database) CompanyStore {
	mapper := CompanyMapper{}
	return CompanyStore{
		Repository: database.NewRepository[roster.Company, CompanyModel](db, mapper, "company"),
		mapper:     mapper,
	}
}

// Save creates the company, or updates the existing row when the profile
// URL is already known.
func (s CompanyStore) Save(ctx context.Context, company roster.Company) (roster.Company, error) {
	var existing CompanyModel
	err := s.DB(ctx).Where("profile_url = ?", company.ProfileURL()).First(&existing).Error
	if err == nil {
		model := s.mapper.ToModel(company)
		model.ID = existing.ID
		model.CreatedAt = existing.CreatedAt
		if err := s.DB(ctx).Save(&model).Error; err != nil {
			return roster.Company{}, fmt.Errorf("update company: %w", err)
		}
		return s.mapper.ToDomain(model), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return roster.Company{}, fmt.Errorf("look up company: %w", err)
	}

	model := s.mapper.ToModel(company)
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		return roster.Company{}, fmt.Errorf("create company: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}
