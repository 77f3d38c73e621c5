package scrape

import "time"

// Record is a single scraped observation. Records are ephemeral: they exist
// only for the duration of a reconciliation pass and are never persisted
// verbatim.
type Record struct {
	query      string
	profileURL string
	name       string
	firstName  string
	lastName   string
	title      string
	location   string
	degree     string
	company    string
	errMsg     string
	observedAt time.Time
}

// NewRecord creates a Record for the given query key, candidate identifier,
// and display name. Auxiliary attributes are attached with the With*
// methods.
func NewRecord(query, profileURL, name string) Record {
	return Record{query: query, profileURL: profileURL, name: name}
}

// Query returns the query key — the identity the scrape was searching for
// (a company URL for roster scrapes, a person name for profile searches).
func (r Record) Query() string { return r.query }

// ProfileURL returns the candidate's stable identifier, if any.
func (r Record) ProfileURL() string { return r.profileURL }

// Name returns the candidate's display name.
func (r Record) Name() string { return r.name }

// FirstName returns the candidate's first name.
func (r Record) FirstName() string { return r.firstName }

// LastName returns the candidate's last name.
func (r Record) LastName() string { return r.lastName }

// Title returns the candidate's job title or headline.
func (r Record) Title() string { return r.title }

// Location returns the candidate's location.
func (r Record) Location() string { return r.location }

// Degree returns the connection degree attribute ("1st", "2nd", "3rd").
func (r Record) Degree() string { return r.degree }

// Company returns the display name of the company the record belongs to.
func (r Record) Company() string { return r.company }

// ErrMsg returns the per-row scrape error, if the source reported one.
func (r Record) ErrMsg() string { return r.errMsg }

// Failed reports whether the source flagged this row as errored.
func (r Record) Failed() bool { return r.errMsg != "" }

// ObservedAt returns the batch processing timestamp attached by the source.
func (r Record) ObservedAt() time.Time { return r.observedAt }

// WithNames returns a copy with first and last name set.
func (r Record) WithNames(first, last string) Record {
	r.firstName = first
	r.lastName = last
	return r
}

// WithTitle returns a copy with the job title set.
func (r Record) WithTitle(title string) Record {
	r.title = title
	return r
}

// WithLocation returns a copy with the location set.
func (r Record) WithLocation(location string) Record {
	r.location = location
	return r
}

// WithDegree returns a copy with the connection degree set.
func (r Record) WithDegree(degree string) Record {
	r.degree = degree
	return r
}

// WithCompany returns a copy with the company display name set.
func (r Record) WithCompany(company string) Record {
	r.company = company
	return r
}

// WithError returns a copy flagged with a per-row scrape error.
func (r Record) WithError(msg string) Record {
	r.errMsg = msg
	return r
}

// WithObservedAt returns a copy with the observation timestamp set.
func (r Record) WithObservedAt(t time.Time) Record {
	r.observedAt = t
	return r
}
