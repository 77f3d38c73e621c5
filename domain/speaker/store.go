package speaker

import (
	"context"
	"errors"

	"github.com/talentwatch/talentwatch/domain/store"
)

// ErrConferenceExists indicates the (name, year) conference was already
// ingested. Callers treat it as the idempotence signal to skip re-ingest.
var ErrConferenceExists = errors.New("conference already exists")

// SpeakerStore persists speakers, unique by name.
type SpeakerStore interface {
	Find(ctx context.Context, options ...store.Option) ([]Speaker, error)
	FindOne(ctx context.Context, options ...store.Option) (Speaker, error)
	Exists(ctx context.Context, options ...store.Option) (bool, error)
	Save(ctx context.Context, speaker Speaker) (Speaker, error)
}

// TalkStore persists talks.
type TalkStore interface {
	Find(ctx context.Context, options ...store.Option) ([]Talk, error)
	Save(ctx context.Context, talk Talk) (Talk, error)
}

// ConferenceStore persists conferences, unique by (name, year).
// Create reports ErrConferenceExists on a duplicate.
type ConferenceStore interface {
	Exists(ctx context.Context, name string, year int) (bool, error)
	Create(ctx context.Context, name string, year int) error
}
