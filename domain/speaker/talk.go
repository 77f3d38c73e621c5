package speaker

import "github.com/talentwatch/talentwatch/domain/identity"

// Talk is one conference talk. A talk belongs to exactly one
// (speaker, conference, year) combination; the same title text may appear
// in several sources and is deduplicated by TalkKey.
type Talk struct {
	speakerName string
	conference  string
	year        int
	title       string
	company     string
}

// NewTalk creates a Talk.
func NewTalk(speakerName, conference string, year int, title, company string) Talk {
	return Talk{
		speakerName: speakerName,
		conference:  conference,
		year:        year,
		title:       title,
		company:     company,
	}
}

// SpeakerName returns the speaker's display name.
func (t Talk) SpeakerName() string { return t.speakerName }

// NormSpeakerName returns the speaker's normalized name key.
func (t Talk) NormSpeakerName() string { return identity.Normalize(t.speakerName) }

// Conference returns the conference name.
func (t Talk) Conference() string { return t.conference }

// Year returns the conference year.
func (t Talk) Year() int { return t.year }

// Title returns the talk title (may be empty when only the speaker was
// listed).
func (t Talk) Title() string { return t.title }

// Company returns the company the speaker represented, if known.
func (t Talk) Company() string { return t.company }

// WithTitle returns a copy with the title set.
func (t Talk) WithTitle(title string) Talk {
	t.title = title
	return t
}

// Key returns the talk's deduplication key.
func (t Talk) Key() TalkKey {
	return TalkKey{Title: t.title, Conference: t.conference, Year: t.year}
}

// TalkKey identifies duplicate talk content across sources: the same
// (title, conference, year) triple is one talk no matter how many pages
// list it.
type TalkKey struct {
	Title      string
	Conference string
	Year       int
}

// ParsedTalk is a (speaker, title) pair extracted from a raw video title,
// not yet tied to a conference.
type ParsedTalk struct {
	SpeakerName string
	TalkTitle   string
	Company     string
}
