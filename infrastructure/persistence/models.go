// Package persistence provides GORM-backed storage for roster, speaker, and
// batch-ledger state.
package persistence

import "time"

// PersonModel is the database row for a resolved person.
type PersonModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	ProfileURL string `gorm:"column:profile_url;uniqueIndex;not null"`
	Name       string `gorm:"column:name"`
	NormName   string `gorm:"column:norm_name;index"`
	FirstName  string `gorm:"column:first_name"`
	LastName   string `gorm:"column:last_name"`
	Headline   string `gorm:"column:headline"`
	Location   string `gorm:"column:location"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name.
func (PersonModel) TableName() string { return "people" }

// CompanyModel is the database row for a resolved company.
type CompanyModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	ProfileURL string `gorm:"column:profile_url;uniqueIndex;not null"`
	Name       string `gorm:"column:name"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name.
func (CompanyModel) TableName() string { return "companies" }

// RelationshipModel is the database row for a person-company association.
// The composite unique index enforces the one-row-per-pair invariant.
type RelationshipModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	PersonURL   string    `gorm:"column:person_url;uniqueIndex:idx_relationships_pair;not null"`
	CompanyURL  string    `gorm:"column:company_url;uniqueIndex:idx_relationships_pair;index;not null"`
	StatusCode  int       `gorm:"column:status_code;not null"`
	UpdateCount int       `gorm:"column:update_count;not null"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name.
func (RelationshipModel) TableName() string { return "relationships" }

// SpeakerModel is the database row for a conference speaker, unique by name.
type SpeakerModel struct {
	Name       string `gorm:"column:name;primaryKey"`
	NormName   string `gorm:"column:norm_name;index"`
	WebsiteURL string `gorm:"column:website_url"`
	ProfileURL string `gorm:"column:profile_url"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name.
func (SpeakerModel) TableName() string { return "speakers" }

// TalkModel is the database row for a conference talk. The unique index
// backs the (title, conference, year) deduplication of talk content.
type TalkModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	SpeakerName    string `gorm:"column:speaker_name;index;not null"`
	ConferenceName string `gorm:"column:conference_name;uniqueIndex:idx_talks_dedup;not null"`
	ConferenceYear int    `gorm:"column:conference_year;uniqueIndex:idx_talks_dedup;not null"`
	Title          string `gorm:"column:title;uniqueIndex:idx_talks_dedup"`
	Company        string `gorm:"column:company"`
	CreatedAt      time.Time
}

// TableName returns the table name.
func (TalkModel) TableName() string { return "talks" }

// ConferenceModel is the database row for a conference, unique by
// (name, year). Its uniqueness is the ingest idempotence guard.
type ConferenceModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;uniqueIndex:idx_conferences_name_year;not null"`
	Year      int    `gorm:"column:year;uniqueIndex:idx_conferences_name_year;not null"`
	CreatedAt time.Time
}

// TableName returns the table name.
func (ConferenceModel) TableName() string { return "conferences" }

// SeenBatchModel is one row of the append-only batch ledger.
type SeenBatchModel struct {
	ID      int64     `gorm:"primaryKey;autoIncrement"`
	AgentID string    `gorm:"column:agent_id;uniqueIndex:idx_seen_batches_agent_batch;not null"`
	BatchID string    `gorm:"column:batch_id;uniqueIndex:idx_seen_batches_agent_batch;not null"`
	SeenAt  time.Time `gorm:"column:seen_at;not null"`
}

// TableName returns the table name.
func (SeenBatchModel) TableName() string { return "seen_batches" }
