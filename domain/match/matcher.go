// Package match resolves noisy scraped candidate sets to stable
// identifiers: confident 1:1 matches, connection-degree tie-breaks, and
// escalation of true ambiguity to an external oracle.
package match

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/talentwatch/talentwatch/domain/scrape"
)

// ErrNoDecision is returned by an Oracle that inspected the candidates but
// declined to pick one.
var ErrNoDecision = errors.New("oracle returned no decision")

// Oracle chooses a single identifier out of an ambiguous candidate set.
// Called only for 1:n groups that survived the degree tie-break; treated as
// fallible and possibly slow.
type Oracle interface {
	Choose(ctx context.Context, candidates []scrape.Record) (string, error)
}

// Match is a resolved (query key, identifier) pair.
type Match struct {
	query      string
	profileURL string
}

// Query returns the query key the match resolves.
func (m Match) Query() string { return m.query }

// ProfileURL returns the chosen stable identifier.
func (m Match) ProfileURL() string { return m.profileURL }

// Group is a query key's full candidate set, kept for unresolved groups so
// the next run can retry them.
type Group struct {
	query   string
	records []scrape.Record
}

// Query returns the group's query key.
func (g Group) Query() string { return g.query }

// Records returns the group's candidate records.
func (g Group) Records() []scrape.Record {
	out := make([]scrape.Record, len(g.records))
	copy(out, g.records)
	return out
}

// Resolution is the outcome of resolving one run's worth of records.
type Resolution struct {
	matches    []Match
	unresolved []Group
}

// Matches returns the confident and tie-broken matches.
func (r Resolution) Matches() []Match {
	out := make([]Match, len(r.matches))
	copy(out, r.matches)
	return out
}

// Unresolved returns the groups skipped this run (oracle failure or no
// decision). They are retried on the next run.
func (r Resolution) Unresolved() []Group {
	out := make([]Group, len(r.unresolved))
	copy(out, r.unresolved)
	return out
}

// degreeTiers is the strict priority order for the connection-degree
// tie-break.
var degreeTiers = []string{"1st", "2nd", "3rd"}

// Matcher resolves grouped records to identifiers.
type Matcher struct {
	oracle Oracle
	logger *slog.Logger
}

// NewMatcher creates a Matcher. The oracle may be nil, in which case
// ambiguous groups that survive the tie-break are left unresolved.
func NewMatcher(oracle Oracle, logger *slog.Logger) Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return Matcher{oracle: oracle, logger: logger}
}

// Resolve groups records by query key and decides each group:
//
//   - exactly one distinct identifier: confident 1:1 match (duplicate rows
//     with the same identifier collapse, they are not ambiguity);
//   - no identifier: group dropped;
//   - several identifiers: degree tie-break — at the first tier holding
//     exactly one candidate that candidate wins; at the first tier holding
//     several, the oracle picks among exactly those candidates and lower
//     tiers are never consulted; all tiers empty means no match.
//
// An oracle failure or non-decision skips only that group; it is reported
// in Resolution.Unresolved and retried next run without blocking the rest.
func (m Matcher) Resolve(ctx context.Context, records []scrape.Record) Resolution {
	groups := groupByQuery(records)

	var resolution Resolution
	for _, g := range groups {
		ids := distinctProfileURLs(g.records)

		switch len(ids) {
		case 0:
			continue
		case 1:
			resolution.matches = append(resolution.matches, Match{query: g.query, profileURL: ids[0]})
		default:
			m.tieBreak(ctx, g, &resolution)
		}
	}
	return resolution
}

func (m Matcher) tieBreak(ctx context.Context, g Group, resolution *Resolution) {
	for _, tier := range degreeTiers {
		var candidates []scrape.Record
		for _, r := range g.records {
			if r.Degree() == tier {
				candidates = append(candidates, r)
			}
		}

		switch {
		case len(candidates) == 0:
			continue
		case len(candidates) == 1:
			m.logger.Info("tie-break resolved",
				slog.String("query", g.query),
				slog.String("degree", tier),
				slog.String("profile_url", candidates[0].ProfileURL()),
			)
			resolution.matches = append(resolution.matches, Match{query: g.query, profileURL: candidates[0].ProfileURL()})
			return
		default:
			m.escalate(ctx, g, candidates, resolution)
			return
		}
	}
	// No tier yielded a candidate: no match for this group.
	m.logger.Info("tie-break exhausted without a decision", slog.String("query", g.query))
}

func (m Matcher) escalate(ctx context.Context, g Group, candidates []scrape.Record, resolution *Resolution) {
	if m.oracle == nil {
		resolution.unresolved = append(resolution.unresolved, g)
		return
	}

	profileURL, err := m.oracle.Choose(ctx, candidates)
	if err != nil || profileURL == "" {
		if err == nil {
			err = ErrNoDecision
		}
		m.logger.Warn("disambiguation skipped, retrying next run",
			slog.String("query", g.query),
			slog.Int("candidates", len(candidates)),
			slog.String("error", err.Error()),
		)
		resolution.unresolved = append(resolution.unresolved, g)
		return
	}

	m.logger.Info("oracle resolved ambiguous group",
		slog.String("query", g.query),
		slog.String("profile_url", profileURL),
	)
	resolution.matches = append(resolution.matches, Match{query: g.query, profileURL: profileURL})
}

// groupByQuery buckets records by query key, preserving first-seen query
// order for deterministic output.
func groupByQuery(records []scrape.Record) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		if r.Query() == "" {
			continue
		}
		i, ok := index[r.Query()]
		if !ok {
			i = len(groups)
			index[r.Query()] = i
			groups = append(groups, Group{query: r.Query()})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

// distinctProfileURLs returns the sorted distinct non-empty identifiers in
// the records.
func distinctProfileURLs(records []scrape.Record) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range records {
		url := r.ProfileURL()
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		ids = append(ids, url)
	}
	sort.Strings(ids)
	return ids
}
