package phantom

import (
	"github.com/talentwatch/talentwatch/domain/scrape"
)

// EmployeeFilter shapes rows from a company-employees agent. Rows carrying
// a scrape error are dropped, and the company display name is attached
// from the watched-company list keyed by company profile URL.
func EmployeeFilter(companies map[string]string) scrape.RecordFilter {
	return scrape.RecordFilterFunc(func(records []scrape.Record) []scrape.Record {
		var filtered []scrape.Record
		for _, r := range records {
			if r.Failed() {
				continue
			}
			if name, ok := companies[r.Query()]; ok {
				r = r.WithCompany(name)
			}
			filtered = append(filtered, r)
		}
		return filtered
	})
}

// SearchExportFilter shapes rows from a people-search agent. Errored rows
// are dropped; the connection degree survives so ambiguous name groups can
// be tie-broken later.
func SearchExportFilter() scrape.RecordFilter {
	return scrape.RecordFilterFunc(func(records []scrape.Record) []scrape.Record {
		var filtered []scrape.Record
		for _, r := range records {
			if r.Failed() {
				continue
			}
			filtered = append(filtered, r)
		}
		return filtered
	})
}

// ProfileFinderFilter shapes rows from a profile URL finder agent, where
// the query is a person name and each row is a candidate profile URL.
// Rows without a candidate URL carry no signal and are dropped.
func ProfileFinderFilter() scrape.RecordFilter {
	return scrape.RecordFilterFunc(func(records []scrape.Record) []scrape.Record {
		var filtered []scrape.Record
		for _, r := range records {
			if r.Failed() || r.ProfileURL() == "" {
				continue
			}
			filtered = append(filtered, r)
		}
		return filtered
	})
}
