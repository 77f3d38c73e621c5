package roster

import "time"

// EmploymentStatus is the status of a person-company relationship.
type EmploymentStatus int

// EmploymentStatus values. The numeric codes are persisted.
const (
	Unemployed EmploymentStatus = 0
	Employed   EmploymentStatus = 1
)

// String returns a readable status.
func (s EmploymentStatus) String() string {
	if s == Employed {
		return "Employed"
	}
	return "Unemployed"
}

// Relationship represents "person P is associated with company C". Exactly
// one relationship exists per (person, company) pair. update_count counts
// observed reconfirmations and changes — it increments on every fold that
// touches the row, not only on status transitions — and only ever grows;
// last_updated is monotonically non-decreasing. Relationships are never
// physically deleted: departure transitions the status to Unemployed,
// preserving history.
type Relationship struct {
	id          int64
	personURL   string
	companyURL  string
	status      EmploymentStatus
	updateCount int
	lastUpdated time.Time
}

// NewRelationship creates the relationship for a person first observed at a
// company at logical time t.
func NewRelationship(personURL, companyURL string, t time.Time) Relationship {
	return Relationship{
		personURL:   personURL,
		companyURL:  companyURL,
		status:      Employed,
		updateCount: 0,
		lastUpdated: t,
	}
}

// ReconstructRelationship rebuilds a Relationship from persisted state.
func ReconstructRelationship(id int64, personURL, companyURL string, status EmploymentStatus, updateCount int, lastUpdated time.Time) Relationship {
	return Relationship{
		id:          id,
		personURL:   personURL,
		companyURL:  companyURL,
		status:      status,
		updateCount: updateCount,
		lastUpdated: lastUpdated,
	}
}

// ID returns the database identifier (0 before first save).
func (r Relationship) ID() int64 { return r.id }

// PersonURL returns the person's stable identifier.
func (r Relationship) PersonURL() string { return r.personURL }

// CompanyURL returns the company's stable identifier.
func (r Relationship) CompanyURL() string { return r.companyURL }

// Status returns the current employment status.
func (r Relationship) Status() EmploymentStatus { return r.status }

// UpdateCount returns the number of observed reconfirmations and changes.
func (r Relationship) UpdateCount() int { return r.updateCount }

// LastUpdated returns the timestamp of the last observed confirmation or
// change.
func (r Relationship) LastUpdated() time.Time { return r.lastUpdated }

// sameInstant compares timestamps normalized to UTC. Stored values may come
// back in a local zone depending on the driver.
func sameInstant(a, b time.Time) bool {
	return a.UTC().Equal(b.UTC())
}

// Observe folds a sighting of the pair at logical time t. If the
// relationship was already folded at t the call is a no-op (re-entrancy
// guard for crash-retry before the cursor advances); the second return is
// false. Otherwise the relationship is reconfirmed Employed, the update
// counter incremented, and last_updated moved to t.
func (r Relationship) Observe(t time.Time) (Relationship, bool) {
	if sameInstant(r.lastUpdated, t) {
		return r, false
	}
	r.status = Employed
	r.updateCount++
	r.lastUpdated = t
	return r, true
}

// MarkDeparted folds an absence of the pair from a re-scraped company's
// snapshot at logical time t. Same re-entrancy guard as Observe.
func (r Relationship) MarkDeparted(t time.Time) (Relationship, bool) {
	if sameInstant(r.lastUpdated, t) {
		return r, false
	}
	r.status = Unemployed
	r.updateCount++
	r.lastUpdated = t
	return r, true
}
