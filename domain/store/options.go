package store

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithProfileURL filters by the "profile_url" column.
func WithProfileURL(url string) Option {
	return WithCondition("profile_url", url)
}

// WithPersonURL filters by the "person_url" column.
func WithPersonURL(url string) Option {
	return WithCondition("person_url", url)
}

// WithCompanyURL filters by the "company_url" column.
func WithCompanyURL(url string) Option {
	return WithCondition("company_url", url)
}

// WithCompanyURLIn filters by the "company_url" column using IN.
func WithCompanyURLIn(urls []string) Option {
	return WithConditionIn("company_url", urls)
}

// WithName filters by the "name" column.
func WithName(name string) Option {
	return WithCondition("name", name)
}

// WithNormName filters by the "norm_name" column.
func WithNormName(name string) Option {
	return WithCondition("norm_name", name)
}

// WithAgentID filters by the "agent_id" column.
func WithAgentID(id string) Option {
	return WithCondition("agent_id", id)
}

// WithBatchID filters by the "batch_id" column.
func WithBatchID(id string) Option {
	return WithCondition("batch_id", id)
}

// WithConference filters by conference name and year.
func WithConference(name string, year int) []Option {
	return []Option{
		WithCondition("conference_name", name),
		WithCondition("conference_year", year),
	}
}

// WithoutProfileURL filters rows whose "profile_url" column is empty.
// Used to find speakers still waiting for identifier resolution.
func WithoutProfileURL() Option {
	return WithCondition("profile_url", "")
}
