package roster

import (
	"context"

	"github.com/talentwatch/talentwatch/domain/store"
)

// PersonStore persists resolved people.
type PersonStore interface {
	Find(ctx context.Context, options ...store.Option) ([]Person, error)
	FindOne(ctx context.Context, options ...store.Option) (Person, error)
	Exists(ctx context.Context, options ...store.Option) (bool, error)
	// Save creates the person, or updates in place when the profile URL
	// already exists.
	Save(ctx context.Context, person Person) (Person, error)
}

// CompanyStore persists resolved companies.
type CompanyStore interface {
	Find(ctx context.Context, options ...store.Option) ([]Company, error)
	FindOne(ctx context.Context, options ...store.Option) (Company, error)
	Exists(ctx context.Context, options ...store.Option) (bool, error)
	Save(ctx context.Context, company Company) (Company, error)
}

// RelationshipStore persists person-company associations. The store
// enforces the one-row-per-pair invariant: saving a relationship whose
// (person, company) pair already exists updates that row.
type RelationshipStore interface {
	Find(ctx context.Context, options ...store.Option) ([]Relationship, error)
	FindOne(ctx context.Context, options ...store.Option) (Relationship, error)
	Save(ctx context.Context, rel Relationship) (Relationship, error)
}
