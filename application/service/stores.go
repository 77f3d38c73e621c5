package service

import (
	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/internal/database"
)

// Stores bundles the domain stores a run works against.
type Stores struct {
	People        roster.PersonStore
	Companies     roster.CompanyStore
	Relationships roster.RelationshipStore
	Speakers      speaker.SpeakerStore
	Talks         speaker.TalkStore
	Conferences   speaker.ConferenceStore
	Ledger        scrape.Ledger
}

// StoreFactory builds the store bundle over a database handle. Passing a
// transaction-scoped handle yields transaction-scoped stores, which is how
// a batch's fold and its cursor advance share one transaction.
type StoreFactory func(db database.Database) Stores
