// Package speaker models conference speakers and their talks, and the
// merge/dedup rules for combining agenda- and page-derived observations.
package speaker

import "github.com/talentwatch/talentwatch/domain/identity"

// Speaker is a person known from conference sources, unique by name and
// optionally enriched with a resolved profile identifier.
type Speaker struct {
	name       string
	normName   string
	websiteURL string
	profileURL string
}

// NewSpeaker creates a Speaker.
func NewSpeaker(name, websiteURL string) Speaker {
	return Speaker{
		name:       name,
		normName:   identity.Normalize(name),
		websiteURL: websiteURL,
	}
}

// ReconstructSpeaker rebuilds a Speaker from persisted state.
func ReconstructSpeaker(name, normName, websiteURL, profileURL string) Speaker {
	return Speaker{
		name:       name,
		normName:   normName,
		websiteURL: websiteURL,
		profileURL: profileURL,
	}
}

// Name returns the unique display name.
func (s Speaker) Name() string { return s.name }

// NormName returns the normalized name key.
func (s Speaker) NormName() string { return s.normName }

// WebsiteURL returns the speaker's website, if known.
func (s Speaker) WebsiteURL() string { return s.websiteURL }

// ProfileURL returns the resolved profile identifier, or empty while
// unresolved.
func (s Speaker) ProfileURL() string { return s.profileURL }

// Resolved reports whether a profile identifier has been attached.
func (s Speaker) Resolved() bool { return s.profileURL != "" }

// WithProfileURL returns a copy carrying the resolved identifier.
func (s Speaker) WithProfileURL(url string) Speaker {
	s.profileURL = url
	return s
}
