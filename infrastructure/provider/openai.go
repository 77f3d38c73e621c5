// Package provider implements LLM-backed helpers on the OpenAI API: the
// disambiguation oracle for ambiguous profile groups and the speaker parser
// for conference video titles.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/talentwatch/talentwatch/domain/match"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/domain/speaker"
)

var _ match.Oracle = (*OpenAIProvider)(nil)

// OpenAIProvider calls the OpenAI chat API in JSON mode, with exponential
// backoff on transient failures.
type OpenAIProvider struct {
	client        *openai.Client
	model         string
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	logger        *slog.Logger
}

// OpenAIOption is a functional option for OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithModel sets the chat completion model.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) { p.model = model }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) OpenAIOption {
	return func(p *OpenAIProvider) { p.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) { p.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) OpenAIOption {
	return func(p *OpenAIProvider) { p.backoffFactor = f }
}

// WithBaseURL sets the API base URL (for testing or proxies).
func WithBaseURL(apiKey, baseURL string) OpenAIOption {
	return func(p *OpenAIProvider) {
		config := openai.DefaultConfig(apiKey)
		config.BaseURL = baseURL
		p.client = openai.NewClientWithConfig(config)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OpenAIOption {
	return func(p *OpenAIProvider) { p.logger = logger }
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		client:        openai.NewClient(apiKey),
		model:         "gpt-4o-mini",
		maxRetries:    5,
		initialDelay:  2 * time.Second,
		backoffFactor: 2.0,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// candidateProfile is the shape a record takes in the disambiguation prompt.
type candidateProfile struct {
	Name             string `json:"name"`
	ProfileURL       string `json:"profile_url"`
	CurrentJob       string `json:"currentJob,omitempty"`
	Location         string `json:"location,omitempty"`
	ConnectionDegree string `json:"connectionDegree,omitempty"`
}

type choiceResponse struct {
	LinkedinURL string `json:"linkedin_url"`
}

const chooseSystemPrompt = "You are a data filtering assistant specialized in LinkedIn profiles. " +
	"Your response must be in JSON format: {\"linkedin_url\": \"linkedin_url\"}"

// Choose picks the profile URL belonging to the person the candidates were
// scraped for. All candidates share one search query; the model judges which
// profile fits the Web3 and blockchain space the watched people work in.
// An empty URL means the model declined to pick.
func (p *OpenAIProvider) Choose(ctx context.Context, candidates []scrape.Record) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	profiles := make([]candidateProfile, len(candidates))
	for i, r := range candidates {
		profiles[i] = candidateProfile{
			Name:             r.Name(),
			ProfileURL:       r.ProfileURL(),
			CurrentJob:       r.Title(),
			Location:         r.Location(),
			ConnectionDegree: r.Degree(),
		}
	}
	encoded, err := json.Marshal(profiles)
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}

	userPrompt := fmt.Sprintf(`Your task is to process a list of LinkedIn profiles.
Each profile includes information like currentJob, location, and connectionDegree.

If multiple profiles have the same or similar names, consider them duplicates and return only one profile from duplicates associated with Web3 and blockchain space, based on the following criteria:

- Mention of Web3 or blockchain in their current job.
- Company they work for (check if the company operates in the Web3 or blockchain space).

Return the profile_url of that profile as linkedin_url.

Here are the profiles:
%s`, encoded)

	content, err := p.complete(ctx, chooseSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("disambiguate %q: %w", candidates[0].Query(), err)
	}

	var choice choiceResponse
	if err := json.Unmarshal([]byte(content), &choice); err != nil {
		return "", fmt.Errorf("decode choice: %w", err)
	}
	if choice.LinkedinURL == "" {
		return "", nil
	}

	// The model must pick from the list, not invent a URL.
	for _, r := range candidates {
		if strings.EqualFold(strings.TrimRight(r.ProfileURL(), "/"), strings.TrimRight(choice.LinkedinURL, "/")) {
			return r.ProfileURL(), nil
		}
	}
	p.logger.Warn("oracle chose a URL outside the candidate set",
		"query", candidates[0].Query(), "chosen", choice.LinkedinURL)
	return "", nil
}

type parsedSpeaker struct {
	Name      string `json:"speaker_name"`
	TalkTitle string `json:"talk_title"`
	Company   string `json:"company"`
}

type speakersResponse struct {
	Speakers []parsedSpeaker `json:"speakers"`
}

const parseSystemPrompt = "You are a helpful assistant. Your response should be in JSON format: " +
	"speakers: [{\"speaker_name\": \"speaker_name\", \"talk_title\": \"talk_title\"}]"

// ParseSpeakers extracts speaker names and talk titles from conference video
// titles, one title per line.
func (p *OpenAIProvider) ParseSpeakers(ctx context.Context, videoTitles []string) ([]speaker.ParsedTalk, error) {
	if len(videoTitles) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, title := range videoTitles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}

	userPrompt := fmt.Sprintf("Extract the talk titles and speaker names from the following video titles:\n%s\n. "+
		"Remove any brackets or special characters from the speaker_name and ensure it contains only the speaker's name.",
		sb.String())

	content, err := p.complete(ctx, parseSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse speakers: %w", err)
	}

	var parsed speakersResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decode speakers: %w", err)
	}

	talks := make([]speaker.ParsedTalk, 0, len(parsed.Speakers))
	for _, s := range parsed.Speakers {
		talks = append(talks, speaker.ParsedTalk{
			SpeakerName: s.Name,
			TalkTitle:   s.TalkTitle,
			Company:     s.Company,
		})
	}
	return talks, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var resp openai.ChatCompletionResponse
	var err error
	err = p.withRetry(ctx, func() error {
		resp, err = p.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// withRetry executes the function with exponential backoff retry.
func (p *OpenAIProvider) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !p.isRetryable(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable determines if an error should be retried.
func (p *OpenAIProvider) isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// Network errors are retryable.
		return true
	}

	return false
}
