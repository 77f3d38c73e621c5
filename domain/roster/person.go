// Package roster models resolved people, companies, and the employment
// relationships between them, including the temporal state machine that
// folds roster snapshots into persisted state.
package roster

import "github.com/talentwatch/talentwatch/domain/identity"

// Person is a resolved identity keyed by its stable profile URL. Created the
// first time a record resolves to a previously-unseen identifier, updated in
// place thereafter, never deleted.
type Person struct {
	id         int64
	profileURL string
	name       string
	normName   string
	firstName  string
	lastName   string
	headline   string
	location   string
}

// NewPerson creates a Person from a first observation.
func NewPerson(profileURL, name string) Person {
	return Person{
		profileURL: profileURL,
		name:       name,
		normName:   identity.Normalize(name),
	}
}

// ReconstructPerson rebuilds a Person from persisted state.
func ReconstructPerson(id int64, profileURL, name, normName, firstName, lastName, headline, location string) Person {
	return Person{
		id:         id,
		profileURL: profileURL,
		name:       name,
		normName:   normName,
		firstName:  firstName,
		lastName:   lastName,
		headline:   headline,
		location:   location,
	}
}

// ID returns the database identifier (0 before first save).
func (p Person) ID() int64 { return p.id }

// ProfileURL returns the stable external identifier.
func (p Person) ProfileURL() string { return p.profileURL }

// Name returns the display name.
func (p Person) Name() string { return p.name }

// NormName returns the normalized name key.
func (p Person) NormName() string { return p.normName }

// FirstName returns the first name.
func (p Person) FirstName() string { return p.firstName }

// LastName returns the last name.
func (p Person) LastName() string { return p.lastName }

// Headline returns the descriptive headline or job title.
func (p Person) Headline() string { return p.headline }

// Location returns the location.
func (p Person) Location() string { return p.location }

// WithDetails returns a copy with descriptive fields set.
func (p Person) WithDetails(firstName, lastName, headline, location string) Person {
	p.firstName = firstName
	p.lastName = lastName
	p.headline = headline
	p.location = location
	return p
}

// Company is a resolved organization keyed by its stable profile URL.
type Company struct {
	id         int64
	profileURL string
	name       string
}

// NewCompany creates a Company.
func NewCompany(profileURL, name string) Company {
	return Company{profileURL: profileURL, name: name}
}

// ReconstructCompany rebuilds a Company from persisted state.
func ReconstructCompany(id int64, profileURL, name string) Company {
	return Company{id: id, profileURL: profileURL, name: name}
}

// ID returns the database identifier (0 before first save).
func (c Company) ID() int64 { return c.id }

// ProfileURL returns the stable external identifier.
func (c Company) ProfileURL() string { return c.profileURL }

// Name returns the display name.
func (c Company) Name() string { return c.name }
