package scrape

import "time"

// Snapshot is one batch's worth of records together with the batch's logical
// timestamp. Company rosters are refreshed as full snapshots: a person
// missing from the snapshot of a re-scraped company is the only signal of
// departure.
type Snapshot struct {
	records    []Record
	observedAt time.Time
}

// NewSnapshot creates a Snapshot. The logical timestamp is the maximum
// record observation time, falling back to fallback when no record carries
// one.
func NewSnapshot(records []Record, fallback time.Time) Snapshot {
	observedAt := fallback
	for _, r := range records {
		if r.ObservedAt().After(observedAt) {
			observedAt = r.ObservedAt()
		}
	}
	return Snapshot{records: records, observedAt: observedAt}
}

// Records returns the snapshot's records.
func (s Snapshot) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// ObservedAt returns the snapshot's logical timestamp T.
func (s Snapshot) ObservedAt() time.Time { return s.observedAt }

// Empty reports whether the snapshot holds no records.
func (s Snapshot) Empty() bool { return len(s.records) == 0 }

// Companies returns the distinct query values of the snapshot — the
// universe of companies actually re-scraped in this batch. Absence-based
// departure detection must never look beyond this set.
func (s Snapshot) Companies() []string {
	seen := make(map[string]struct{}, len(s.records))
	var companies []string
	for _, r := range s.records {
		if _, ok := seen[r.Query()]; ok {
			continue
		}
		seen[r.Query()] = struct{}{}
		companies = append(companies, r.Query())
	}
	return companies
}

// ObservedProfiles returns the set of profile URLs present in the snapshot.
func (s Snapshot) ObservedProfiles() map[string]struct{} {
	profiles := make(map[string]struct{}, len(s.records))
	for _, r := range s.records {
		if r.ProfileURL() != "" {
			profiles[r.ProfileURL()] = struct{}{}
		}
	}
	return profiles
}
