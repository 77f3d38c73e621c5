// Package phantom fetches scraped data batches from the PhantomBuster API.
package phantom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talentwatch/talentwatch/domain/scrape"
)

const defaultBaseURL = "https://api.phantombuster.com/api/v2"

// Client implements scrape.Source against the PhantomBuster container API.
// Agents run scraping jobs on a schedule; each finished job leaves a
// container whose result object holds the scraped rows. Large results are
// offloaded to an S3 URL referenced by the result object.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Client.
type Option func(*Client)

// WithBaseURL sets the API base URL (for testing or proxies).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTransport sets the HTTP transport, e.g. a CachingTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// NewClient creates a new PhantomBuster API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type containerList struct {
	Containers []container `json:"containers"`
}

type container struct {
	ID         json.Number `json:"id"`
	LaunchedAt int64       `json:"launchedAt"`
	EndedAt    int64       `json:"endedAt"`
}

type resultObject struct {
	ResultObject string `json:"resultObject"`
}

// ListBatches returns every finished container of the agent.
func (c *Client) ListBatches(ctx context.Context, agentID string) ([]scrape.Batch, error) {
	url := fmt.Sprintf("%s/containers/fetch-all?agentId=%s", c.baseURL, agentID)

	var list containerList
	if err := c.getJSON(ctx, url, true, &list); err != nil {
		return nil, fmt.Errorf("list containers for agent %s: %w", agentID, err)
	}

	batches := make([]scrape.Batch, 0, len(list.Containers))
	for _, ct := range list.Containers {
		ended := ct.EndedAt
		if ended == 0 {
			ended = ct.LaunchedAt
		}
		batches = append(batches, scrape.NewBatch(ct.ID.String(), time.UnixMilli(ended).UTC()))
	}
	return batches, nil
}

// FetchBatch returns the records of one container. An empty result object
// yields no records and no error.
func (c *Client) FetchBatch(ctx context.Context, batchID string) ([]scrape.Record, error) {
	url := fmt.Sprintf("%s/containers/fetch-result-object?id=%s", c.baseURL, batchID)

	var result resultObject
	if err := c.getJSON(ctx, url, true, &result); err != nil {
		return nil, fmt.Errorf("fetch container %s: %w", batchID, err)
	}
	if result.ResultObject == "" {
		return nil, nil
	}

	// The result object is itself a JSON document: either the row array
	// inline, or an indirection object pointing at the full payload.
	var rows []rawRecord
	if err := json.Unmarshal([]byte(result.ResultObject), &rows); err == nil {
		return toRecords(rows), nil
	}

	var indirection struct {
		JSONURL string `json:"jsonUrl"`
	}
	if err := json.Unmarshal([]byte(result.ResultObject), &indirection); err != nil {
		return nil, fmt.Errorf("parse result object of container %s: %w", batchID, err)
	}
	if indirection.JSONURL == "" {
		return nil, fmt.Errorf("container %s: result object has no rows and no jsonUrl", batchID)
	}

	if err := c.getJSON(ctx, indirection.JSONURL, false, &rows); err != nil {
		return nil, fmt.Errorf("fetch offloaded result of container %s: %w", batchID, err)
	}
	return toRecords(rows), nil
}

func (c *Client) getJSON(ctx context.Context, url string, authenticated bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	if authenticated {
		req.Header.Set("X-Phantombuster-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", scrape.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", scrape.ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		if isTransientStatus(resp.StatusCode) {
			return fmt.Errorf("%w: status %d: %s", scrape.ErrUnavailable, resp.StatusCode, truncate(body))
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// rawRecord is one scraped row as the vendor serializes it. Different agent
// types populate different subsets of these fields.
type rawRecord struct {
	Query            string `json:"query"`
	ProfileURL       string `json:"profileUrl"`
	URL              string `json:"url"`
	Name             string `json:"name"`
	FullName         string `json:"fullName"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Job              string `json:"job"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	ConnectionDegree string `json:"connectionDegree"`
	Timestamp        string `json:"timestamp"`
	Error            string `json:"error"`
}

func toRecords(rows []rawRecord) []scrape.Record {
	records := make([]scrape.Record, 0, len(rows))
	for _, row := range rows {
		name := row.Name
		if name == "" {
			name = row.FullName
		}
		profileURL := row.ProfileURL
		if profileURL == "" {
			profileURL = row.URL
		}
		title := row.Job
		if title == "" {
			title = row.Title
		}

		record := scrape.NewRecord(row.Query, profileURL, name).
			WithNames(row.FirstName, row.LastName).
			WithTitle(title).
			WithLocation(row.Location).
			WithDegree(row.ConnectionDegree).
			WithError(row.Error)

		if ts, err := time.Parse(time.RFC3339, row.Timestamp); err == nil {
			record = record.WithObservedAt(ts.UTC())
		}
		records = append(records, record)
	}
	return records
}

var _ scrape.Source = (*Client)(nil)
