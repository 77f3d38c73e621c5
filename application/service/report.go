package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/domain/speaker"
	"github.com/talentwatch/talentwatch/domain/store"
	"github.com/talentwatch/talentwatch/internal/database"
)

// Table names published by the reporter.
const (
	TableEmployees       = "company_employees"
	TableFormerEmployees = "company_employees_former"
	TableSpeakers        = "conference_speakers"
	TableFormerSpeakers  = "conference_speakers_former"
)

const lastUpdatedLayout = "2006-01-02 15:04:05"

// ReportSink receives finished report tables. Implementations decide where
// the table lands (CSV files, a spreadsheet, stdout).
type ReportSink interface {
	Publish(ctx context.Context, table string, header []string, rows [][]string) error
}

// Reporter derives the employee and speaker report tables from stored state
// and publishes them to a sink.
type Reporter struct {
	db     database.Database
	stores StoreFactory
	sink   ReportSink
	logger *slog.Logger
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithReporterLogger sets the logger used by the reporter.
func WithReporterLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// NewReporter creates a reporter backed by the given stores and sink.
func NewReporter(db database.Database, stores StoreFactory, sink ReportSink, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		db:     db,
		stores: stores,
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// employeeRow is one line of the employee tables.
type employeeRow struct {
	profileURL string
	name       string
	headline   string
	location   string
	companies  string
	label      roster.Label
}

// companyEntry is the per-company detail serialized into the companies
// column.
type companyEntry struct {
	Company          string `json:"company"`
	EmploymentStatus string `json:"employment_status"`
	LastUpdated      string `json:"last_updated"`
}

// PublishEmployees publishes the full employee table and the former-only
// subset.
func (r *Reporter) PublishEmployees(ctx context.Context) error {
	rows, err := r.employeeRows(ctx)
	if err != nil {
		return err
	}

	header := []string{"profile_url", "name", "description", "location", "companies", "label"}
	all := make([][]string, 0, len(rows))
	former := make([][]string, 0)
	for _, row := range rows {
		cells := []string{row.profileURL, row.name, row.headline, row.location, row.companies, string(row.label)}
		all = append(all, cells)
		if row.label == roster.LabelFormer {
			former = append(former, cells)
		}
	}

	if err := r.sink.Publish(ctx, TableEmployees, header, all); err != nil {
		return fmt.Errorf("failed to publish %s: %w", TableEmployees, err)
	}
	if err := r.sink.Publish(ctx, TableFormerEmployees, header, former); err != nil {
		return fmt.Errorf("failed to publish %s: %w", TableFormerEmployees, err)
	}

	r.logger.InfoContext(ctx, "published employee tables",
		slog.Int("employees", len(all)), slog.Int("former", len(former)))
	return nil
}

// PublishSpeakers publishes the speaker-talks table and the former-only
// subset. Speakers with a resolved profile URL are annotated with their
// employment detail from the employee table.
func (r *Reporter) PublishSpeakers(ctx context.Context) error {
	stores := r.stores(r.db)

	speakers, err := stores.Speakers.Find(ctx)
	if err != nil {
		return fmt.Errorf("failed to load speakers: %w", err)
	}
	talks, err := stores.Talks.Find(ctx)
	if err != nil {
		return fmt.Errorf("failed to load talks: %w", err)
	}
	if len(speakers) == 0 || len(talks) == 0 {
		r.logger.WarnContext(ctx, "no speaker data to publish",
			slog.Int("speakers", len(speakers)), slog.Int("talks", len(talks)))
		return nil
	}

	employees, err := r.employeeRows(ctx)
	if err != nil {
		return err
	}
	byProfile := make(map[string]employeeRow, len(employees))
	for _, row := range employees {
		byProfile[row.profileURL] = row
	}

	talksByNorm := make(map[string][]speaker.Talk)
	for _, t := range talks {
		norm := t.NormSpeakerName()
		talksByNorm[norm] = append(talksByNorm[norm], t)
	}

	sort.Slice(speakers, func(i, j int) bool { return speakers[i].Name() < speakers[j].Name() })

	maxTalks := 0
	type speakerRow struct {
		sp    speaker.Speaker
		emp   employeeRow
		found bool
		talks []speaker.Talk
	}
	rows := make([]speakerRow, 0, len(speakers))
	for _, sp := range speakers {
		row := speakerRow{sp: sp}
		seen := make(map[speaker.TalkKey]struct{})
		for _, t := range talksByNorm[sp.NormName()] {
			if _, dup := seen[t.Key()]; dup {
				continue
			}
			seen[t.Key()] = struct{}{}
			row.talks = append(row.talks, t)
		}
		if len(row.talks) == 0 {
			continue
		}
		if len(row.talks) > maxTalks {
			maxTalks = len(row.talks)
		}
		if sp.Resolved() {
			row.emp, row.found = byProfile[sp.ProfileURL()]
		}
		rows = append(rows, row)
	}

	header := []string{"name", "website_url", "linkedin_url"}
	for i := 1; i <= maxTalks; i++ {
		header = append(header, "conference_"+strconv.Itoa(i), "talk_"+strconv.Itoa(i))
	}
	header = append(header, "companies", "label")

	all := make([][]string, 0, len(rows))
	former := make([][]string, 0)
	for _, row := range rows {
		cells := []string{row.sp.Name(), row.sp.WebsiteURL(), row.sp.ProfileURL()}
		for i := 0; i < maxTalks; i++ {
			if i < len(row.talks) {
				t := row.talks[i]
				cells = append(cells, fmt.Sprintf("%s_%d", t.Conference(), t.Year()), t.Title())
			} else {
				cells = append(cells, "", "")
			}
		}
		label := ""
		companies := ""
		if row.found {
			label = string(row.emp.label)
			companies = row.emp.companies
		}
		cells = append(cells, companies, label)
		all = append(all, cells)
		if row.found && row.emp.label == roster.LabelFormer {
			former = append(former, cells)
		}
	}

	if err := r.sink.Publish(ctx, TableSpeakers, header, all); err != nil {
		return fmt.Errorf("failed to publish %s: %w", TableSpeakers, err)
	}
	if err := r.sink.Publish(ctx, TableFormerSpeakers, header, former); err != nil {
		return fmt.Errorf("failed to publish %s: %w", TableFormerSpeakers, err)
	}

	r.logger.InfoContext(ctx, "published speaker tables",
		slog.Int("speakers", len(all)), slog.Int("former", len(former)))
	return nil
}

// PublishAll publishes every report table.
func (r *Reporter) PublishAll(ctx context.Context) error {
	if err := r.PublishEmployees(ctx); err != nil {
		return err
	}
	return r.PublishSpeakers(ctx)
}

// employeeRows joins people with their relationships, one row per person,
// sorted by name. People with no relationship are omitted.
func (r *Reporter) employeeRows(ctx context.Context) ([]employeeRow, error) {
	stores := r.stores(r.db)

	people, err := stores.People.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load people: %w", err)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Name() < people[j].Name() })

	rows := make([]employeeRow, 0, len(people))
	for _, p := range people {
		rels, err := stores.Relationships.Find(ctx, store.WithPersonURL(p.ProfileURL()))
		if err != nil {
			return nil, fmt.Errorf("failed to load relationships for %s: %w", p.ProfileURL(), err)
		}
		if len(rels) == 0 {
			continue
		}

		entries := make([]companyEntry, 0, len(rels))
		for _, rel := range rels {
			entries = append(entries, companyEntry{
				Company:          rel.CompanyURL(),
				EmploymentStatus: rel.Status().String(),
				LastUpdated:      rel.LastUpdated().Format(lastUpdatedLayout),
			})
		}
		companies, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to encode companies for %s: %w", p.ProfileURL(), err)
		}

		rows = append(rows, employeeRow{
			profileURL: p.ProfileURL(),
			name:       p.Name(),
			headline:   p.Headline(),
			location:   p.Location(),
			companies:  string(companies),
			label:      roster.AggregateLabel(rels),
		})
	}
	return rows, nil
}
