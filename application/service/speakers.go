package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talentwatch/talentwatch/domain/match"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/domain/store"
	"github.com/talentwatch/talentwatch/internal/database"
)

// ConferenceIngest is one conference's worth of parsed speaker material.
type ConferenceIngest struct {
	Name     string
	Year     int
	Speakers []speaker.Speaker
	Talks    []speaker.Talk
}

// ResolveResult summarizes a profile resolution pass.
type ResolveResult struct {
	// BatchesFolded counts search batches consumed.
	BatchesFolded int
	// Matched counts name groups resolved to a profile URL.
	Matched int
	// Unresolved counts ambiguous groups left for the next run.
	Unresolved int
	// Updated counts speakers whose profile URL was backfilled.
	Updated int
	// Skipped counts matched speakers that already had a profile URL.
	Skipped int
}

// TitleParser extracts (speaker, talk title) pairs from raw conference
// video titles.
type TitleParser interface {
	ParseSpeakers(ctx context.Context, videoTitles []string) ([]speaker.ParsedTalk, error)
}

// Speakers ingests conference speaker material and resolves speaker
// identities to profile URLs from people-search batches.
type Speakers struct {
	db      database.Database
	stores  StoreFactory
	source  scrape.Source
	filter  scrape.RecordFilter
	matcher match.Matcher
	parser  TitleParser
	agentID string
	logger  *slog.Logger
}

// SpeakersOption is a functional option for Speakers.
type SpeakersOption func(*Speakers)

// WithSearchSource sets the people-search batch source and its agent.
func WithSearchSource(source scrape.Source, agentID string) SpeakersOption {
	return func(s *Speakers) {
		s.source = source
		s.agentID = agentID
	}
}

// WithSearchFilter sets the search record filter.
func WithSearchFilter(f scrape.RecordFilter) SpeakersOption {
	return func(s *Speakers) { s.filter = f }
}

// WithMatcher sets the identity matcher.
func WithMatcher(m match.Matcher) SpeakersOption {
	return func(s *Speakers) { s.matcher = m }
}

// WithTitleParser sets the video-title parser used by IngestSources.
func WithTitleParser(p TitleParser) SpeakersOption {
	return func(s *Speakers) { s.parser = p }
}

// WithSpeakersLogger sets the logger.
func WithSpeakersLogger(logger *slog.Logger) SpeakersOption {
	return func(s *Speakers) { s.logger = logger }
}

// NewSpeakers creates a Speakers service.
func NewSpeakers(db database.Database, stores StoreFactory, opts ...SpeakersOption) *Speakers {
	s := &Speakers{
		db:      db,
		stores:  stores,
		matcher: match.NewMatcher(nil, nil),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest stores one conference's speakers and talks. Ingesting a conference
// that already exists is a no-op, so re-running an ingest cannot duplicate
// talks. The whole ingest commits atomically.
func (s *Speakers) Ingest(ctx context.Context, conf ConferenceIngest) error {
	err := database.WithDatabaseTransaction(ctx, s.db, func(txdb database.Database) error {
		stores := s.stores(txdb)

		if err := stores.Conferences.Create(ctx, conf.Name, conf.Year); err != nil {
			return err
		}

		for _, sp := range conf.Speakers {
			exists, err := stores.Speakers.Exists(ctx, store.WithName(sp.Name()))
			if err != nil {
				return fmt.Errorf("check speaker %q: %w", sp.Name(), err)
			}
			if exists {
				continue
			}
			if _, err := stores.Speakers.Save(ctx, sp); err != nil {
				return fmt.Errorf("save speaker %q: %w", sp.Name(), err)
			}
		}

		for _, talk := range conf.Talks {
			if _, err := stores.Talks.Save(ctx, talk); err != nil {
				return fmt.Errorf("save talk %q: %w", talk.Title(), err)
			}
		}
		return nil
	})
	if errors.Is(err, speaker.ErrConferenceExists) {
		s.logger.InfoContext(ctx, "conference already ingested",
			"conference", conf.Name, "year", conf.Year)
		return nil
	}
	return err
}

// IngestSources merges one conference's material from several sources and
// stores the result in a single atomic ingest. Secondary talks fill titles
// missing on the primary talks and contribute talks for speakers the
// primary source lacks; raw video titles are first parsed into further
// secondary talks. A speaker appearing only in secondary material is added
// without a website URL.
func (s *Speakers) IngestSources(ctx context.Context, conf ConferenceIngest, secondary []speaker.Talk, videoTitles []string) error {
	if len(videoTitles) > 0 {
		if s.parser == nil {
			return ErrNoTitleParser
		}
		parsed, err := s.parser.ParseSpeakers(ctx, videoTitles)
		if err != nil {
			return fmt.Errorf("parse video titles: %w", err)
		}
		videoTalks := make([]speaker.Talk, 0, len(parsed))
		for _, p := range parsed {
			videoTalks = append(videoTalks,
				speaker.NewTalk(p.SpeakerName, conf.Name, conf.Year, p.TalkTitle, p.Company))
		}
		secondary = speaker.MergeTalks(secondary, videoTalks)
		s.logger.InfoContext(ctx, "parsed video titles",
			"conference", conf.Name, "titles", len(videoTitles), "talks", len(videoTalks))
	}

	conf.Talks = speaker.FillTitles(conf.Talks, secondary)

	known := make(map[string]struct{}, len(conf.Speakers))
	for _, sp := range conf.Speakers {
		known[sp.NormName()] = struct{}{}
	}
	for _, talk := range conf.Talks {
		if _, ok := known[talk.NormSpeakerName()]; ok {
			continue
		}
		known[talk.NormSpeakerName()] = struct{}{}
		conf.Speakers = append(conf.Speakers, speaker.NewSpeaker(talk.SpeakerName(), ""))
	}

	return s.Ingest(ctx, conf)
}

// ResolveProfiles consumes unseen people-search batches, matches each name
// group to a single profile URL, and backfills speakers that have none.
// Ambiguous groups stay unresolved and are retried when the next search
// batch arrives.
func (s *Speakers) ResolveProfiles(ctx context.Context) (ResolveResult, error) {
	if s.source == nil {
		return ResolveResult{}, ErrNoSource
	}

	cursor := scrape.NewCursor(s.stores(s.db).Ledger, s.agentID)

	all, err := s.source.ListBatches(ctx, s.agentID)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("list batches for agent %s: %w", s.agentID, err)
	}
	unseen, err := cursor.Unseen(ctx, all)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("read batch ledger: %w", err)
	}
	if len(unseen) == 0 {
		s.logger.InfoContext(ctx, "no unseen search batches", "agent_id", s.agentID)
		return ResolveResult{}, nil
	}

	// All unseen batches form one candidate pool: a name searched across
	// two batches still resolves as a single group.
	var records []scrape.Record
	for _, batch := range unseen {
		batchRecords, err := s.source.FetchBatch(ctx, batch.ID())
		if err != nil {
			return ResolveResult{}, fmt.Errorf("fetch batch %s: %w", batch.ID(), err)
		}
		if s.filter != nil {
			batchRecords = s.filter.Filter(batchRecords)
		}
		records = append(records, batchRecords...)
	}

	resolution := s.matcher.Resolve(ctx, records)

	result := ResolveResult{
		BatchesFolded: len(unseen),
		Matched:       len(resolution.Matches()),
		Unresolved:    len(resolution.Unresolved()),
	}

	err = database.WithDatabaseTransaction(ctx, s.db, func(txdb database.Database) error {
		stores := s.stores(txdb)

		updated, skipped, err := s.backfill(ctx, stores, resolution.Matches())
		if err != nil {
			return err
		}
		result.Updated = updated
		result.Skipped = skipped

		for _, batch := range unseen {
			if err := stores.Ledger.MarkSeen(ctx, s.agentID, batch.ID()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ResolveResult{}, err
	}

	s.logger.InfoContext(ctx, "profile resolution complete",
		"agent_id", s.agentID,
		"batches", result.BatchesFolded,
		"matched", result.Matched,
		"unresolved", result.Unresolved,
		"updated", result.Updated,
		"skipped", result.Skipped)
	return result, nil
}

// backfill writes matched profile URLs onto speakers that have none. A
// speaker already carrying a URL keeps it.
func (s *Speakers) backfill(ctx context.Context, stores Stores, matches []match.Match) (updated, skipped int, err error) {
	for _, m := range matches {
		sp, err := stores.Speakers.FindOne(ctx, store.WithName(m.Query()))
		if errors.Is(err, database.ErrNotFound) {
			s.logger.InfoContext(ctx, "matched name has no speaker row", "name", m.Query())
			continue
		}
		if err != nil {
			return 0, 0, fmt.Errorf("look up speaker %q: %w", m.Query(), err)
		}

		if sp.Resolved() {
			skipped++
			continue
		}
		if _, err := stores.Speakers.Save(ctx, sp.WithProfileURL(m.ProfileURL())); err != nil {
			return 0, 0, fmt.Errorf("backfill speaker %q: %w", m.Query(), err)
		}
		updated++
	}
	return updated, skipped, nil
}

// MatchKnownPeople backfills speaker profile URLs from people already in the
// roster, joined by normalized name. Cheaper than a search run: anyone seen
// through company scraping resolves without touching the vendor.
func (s *Speakers) MatchKnownPeople(ctx context.Context) (updated int, err error) {
	stores := s.stores(s.db)

	unresolved, err := stores.Speakers.Find(ctx, store.WithoutProfileURL())
	if err != nil {
		return 0, fmt.Errorf("list unresolved speakers: %w", err)
	}

	for _, sp := range unresolved {
		person, err := stores.People.FindOne(ctx, store.WithNormName(sp.NormName()))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, fmt.Errorf("look up person %q: %w", sp.NormName(), err)
		}
		if _, err := stores.Speakers.Save(ctx, sp.WithProfileURL(person.ProfileURL())); err != nil {
			return updated, fmt.Errorf("backfill speaker %q: %w", sp.Name(), err)
		}
		updated++
	}

	s.logger.InfoContext(ctx, "matched speakers against known people",
		"unresolved", len(unresolved), "updated", updated)
	return updated, nil
}
