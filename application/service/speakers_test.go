package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/domain/store"
	"github.com/talentwatch/talentwatch/internal/testdb"
)

const searchAgentID = "agent-search"

func gopherConIngest() ConferenceIngest {
	return ConferenceIngest{
		Name: "GopherCon",
		Year: 2026,
		Speakers: []speaker.Speaker{
			speaker.NewSpeaker("José Valim", "https://dashbit.co"),
			speaker.NewSpeaker("Ada Lovelace", ""),
		},
		Talks: []speaker.Talk{
			speaker.NewTalk("José Valim", "GopherCon", 2026, "Set Theoretic Types", ""),
			speaker.NewTalk("Ada Lovelace", "GopherCon", 2026, "Notes on the Analytical Engine", ""),
		},
	}
}

func TestSpeakers_Ingest_StoresSpeakersAndTalks(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	s := NewSpeakers(db, storeFactory)
	require.NoError(t, s.Ingest(ctx, gopherConIngest()))

	stores := storeFactory(db)
	sp, err := stores.Speakers.FindOne(ctx, store.WithName("José Valim"))
	require.NoError(t, err)
	assert.Equal(t, "jose valim", sp.NormName())
	assert.False(t, sp.Resolved())

	talks, err := stores.Talks.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, talks, 2)
}

func TestSpeakers_Ingest_SecondIngestIsNoOp(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	s := NewSpeakers(db, storeFactory)
	require.NoError(t, s.Ingest(ctx, gopherConIngest()))

	// Re-running the same conference must not duplicate anything, even if
	// the payload gained extra talks since the first run.
	again := gopherConIngest()
	again.Talks = append(again.Talks, speaker.NewTalk("José Valim", "GopherCon", 2026, "A Brand New Talk", ""))
	require.NoError(t, s.Ingest(ctx, again))

	talks, err := storeFactory(db).Talks.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, talks, 2)
}

func TestSpeakers_ResolveProfiles_BackfillsUnresolved(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	source := &fakeSource{}
	source.addBatch("s1", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		scrape.NewRecord("José Valim", "https://linkedin.com/in/josevalim", "José Valim"),
	)

	s := NewSpeakers(db, storeFactory, WithSearchSource(source, searchAgentID))
	require.NoError(t, s.Ingest(ctx, gopherConIngest()))

	result, err := s.ResolveProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BatchesFolded)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Skipped)

	sp, err := storeFactory(db).Speakers.FindOne(ctx, store.WithName("José Valim"))
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/josevalim", sp.ProfileURL())
	assert.Equal(t, "https://dashbit.co", sp.WebsiteURL())

	// The batch is consumed; a second run has nothing to do.
	result, err = s.ResolveProfiles(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.BatchesFolded)
}

func TestSpeakers_ResolveProfiles_KeepsExistingProfileURL(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	source := &fakeSource{}
	source.addBatch("s1", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		scrape.NewRecord("José Valim", "https://linkedin.com/in/other", "José Valim"),
	)

	s := NewSpeakers(db, storeFactory, WithSearchSource(source, searchAgentID))
	require.NoError(t, s.Ingest(ctx, gopherConIngest()))

	stores := storeFactory(db)
	sp, err := stores.Speakers.FindOne(ctx, store.WithName("José Valim"))
	require.NoError(t, err)
	_, err = stores.Speakers.Save(ctx, sp.WithProfileURL("https://linkedin.com/in/josevalim"))
	require.NoError(t, err)

	result, err := s.ResolveProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Updated)

	sp, err = stores.Speakers.FindOne(ctx, store.WithName("José Valim"))
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/josevalim", sp.ProfileURL())
}

func TestSpeakers_ResolveProfiles_AmbiguousGroupRetriesNextRun(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	// Two same-degree candidates and no oracle: the group stays open, but
	// the batch is still consumed so the run terminates.
	source := &fakeSource{}
	source.addBatch("s1", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		scrape.NewRecord("Ada Lovelace", "https://linkedin.com/in/ada-1", "Ada Lovelace").WithDegree("2nd"),
		scrape.NewRecord("Ada Lovelace", "https://linkedin.com/in/ada-2", "Ada Lovelace").WithDegree("2nd"),
	)

	s := NewSpeakers(db, storeFactory, WithSearchSource(source, searchAgentID))
	require.NoError(t, s.Ingest(ctx, gopherConIngest()))

	result, err := s.ResolveProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Unresolved)
	assert.Zero(t, result.Updated)

	sp, err := storeFactory(db).Speakers.FindOne(ctx, store.WithName("Ada Lovelace"))
	require.NoError(t, err)
	assert.False(t, sp.Resolved())

	seen, err := storeFactory(db).Ledger.SeenIDs(ctx, searchAgentID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, seen)
}

func TestSpeakers_MatchKnownPeople(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	s := NewSpeakers(db, storeFactory)
	require.NoError(t, s.Ingest(ctx, gopherConIngest()))

	// Ada is already in the roster from company scraping, with an accented
	// spelling that still normalizes to the same name.
	employees := &fakeSource{}
	employees.addBatch("b1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		employeeRecord("https://linkedin.com/company/acme", "https://linkedin.com/in/ada", "Ada Lovelace"),
	)
	r := NewReconciler(db, storeFactory, employees, testAgentID)
	_, err := r.Run(ctx)
	require.NoError(t, err)

	updated, err := s.MatchKnownPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	sp, err := storeFactory(db).Speakers.FindOne(ctx, store.WithName("Ada Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/ada", sp.ProfileURL())
}

type fakeTitleParser struct {
	titles []string
	talks  []speaker.ParsedTalk
	err    error
}

func (f *fakeTitleParser) ParseSpeakers(_ context.Context, videoTitles []string) ([]speaker.ParsedTalk, error) {
	f.titles = videoTitles
	return f.talks, f.err
}

func TestSpeakers_IngestSources_FillsTitlesFromSecondary(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	primary := ConferenceIngest{
		Name:     "GopherCon",
		Year:     2026,
		Speakers: []speaker.Speaker{speaker.NewSpeaker("Ada Lovelace", "https://ada.example")},
		Talks:    []speaker.Talk{speaker.NewTalk("Ada Lovelace", "GopherCon", 2026, "", "")},
	}
	secondary := []speaker.Talk{
		speaker.NewTalk("Ada Lovelace", "GopherCon", 2026, "Notes on the Analytical Engine", ""),
		speaker.NewTalk("Grace Hopper", "GopherCon", 2026, "Nanoseconds", ""),
	}

	s := NewSpeakers(db, storeFactory)
	require.NoError(t, s.IngestSources(ctx, primary, secondary, nil))

	stores := storeFactory(db)
	talks, err := stores.Talks.Find(ctx)
	require.NoError(t, err)
	require.Len(t, talks, 2)

	titlesByName := make(map[string]string, len(talks))
	for _, talk := range talks {
		titlesByName[talk.NormSpeakerName()] = talk.Title()
	}
	assert.Equal(t, "Notes on the Analytical Engine", titlesByName["ada lovelace"])
	assert.Equal(t, "Nanoseconds", titlesByName["grace hopper"])

	// Grace arrived through the secondary source only, so she has no
	// website; Ada keeps her primary-source one.
	sp, err := stores.Speakers.FindOne(ctx, store.WithName("Grace Hopper"))
	require.NoError(t, err)
	assert.Empty(t, sp.WebsiteURL())

	sp, err = stores.Speakers.FindOne(ctx, store.WithName("Ada Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, "https://ada.example", sp.WebsiteURL())
}

func TestSpeakers_IngestSources_ParsesVideoTitles(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)

	parser := &fakeTitleParser{talks: []speaker.ParsedTalk{
		{SpeakerName: "Grace Hopper", TalkTitle: "Nanoseconds"},
	}}
	s := NewSpeakers(db, storeFactory, WithTitleParser(parser))

	// The agenda also lists the talk the video was recorded from; the two
	// observations must collapse into one record.
	secondary := []speaker.Talk{
		speaker.NewTalk("Grace Hopper", "StrangeLoop", 2026, "Nanoseconds", ""),
	}
	titles := []string{"Nanoseconds - Grace Hopper - StrangeLoop 2026"}

	require.NoError(t, s.IngestSources(ctx, ConferenceIngest{Name: "StrangeLoop", Year: 2026}, secondary, titles))
	assert.Equal(t, titles, parser.titles)

	stores := storeFactory(db)
	talks, err := stores.Talks.Find(ctx)
	require.NoError(t, err)
	require.Len(t, talks, 1)
	assert.Equal(t, "Nanoseconds", talks[0].Title())
	assert.Equal(t, "StrangeLoop", talks[0].Conference())

	exists, err := stores.Speakers.Exists(ctx, store.WithName("Grace Hopper"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSpeakers_IngestSources_RequiresParserForVideoTitles(t *testing.T) {
	db := testdb.New(t)
	s := NewSpeakers(db, storeFactory)

	err := s.IngestSources(context.Background(),
		ConferenceIngest{Name: "GopherCon", Year: 2026}, nil, []string{"Schedulers - Ada Lovelace"})
	require.ErrorIs(t, err, ErrNoTitleParser)
}
