package provider_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/infrastructure/provider"
)

func chatServer(t *testing.T, handler func(req openai.ChatCompletionRequest) (string, int)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		content, status := handler(req)
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"message":"upstream error","type":"server_error"}}`)
			return
		}
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: content}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAIProvider_ChoosePicksCandidate(t *testing.T) {
	server := chatServer(t, func(req openai.ChatCompletionRequest) (string, int) {
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "https://ln.test/in/ada-2")
		return `{"linkedin_url":"https://ln.test/in/ada-2/"}`, http.StatusOK
	})
	defer server.Close()

	p := provider.NewOpenAIProvider("", provider.WithBaseURL("key", server.URL))
	candidates := []scrape.Record{
		scrape.NewRecord("Ada Lovelace", "https://ln.test/in/ada-1", "Ada Lovelace").WithTitle("Mathematician"),
		scrape.NewRecord("Ada Lovelace", "https://ln.test/in/ada-2", "Ada Lovelace").WithTitle("Blockchain Engineer"),
	}

	chosen, err := p.Choose(context.Background(), candidates)
	require.NoError(t, err)
	// Trailing slash from the model still resolves to the candidate URL.
	assert.Equal(t, "https://ln.test/in/ada-2", chosen)
}

func TestOpenAIProvider_ChooseRejectsInventedURL(t *testing.T) {
	server := chatServer(t, func(openai.ChatCompletionRequest) (string, int) {
		return `{"linkedin_url":"https://ln.test/in/someone-else"}`, http.StatusOK
	})
	defer server.Close()

	p := provider.NewOpenAIProvider("", provider.WithBaseURL("key", server.URL))
	chosen, err := p.Choose(context.Background(), []scrape.Record{
		scrape.NewRecord("Ada Lovelace", "https://ln.test/in/ada-1", "Ada Lovelace"),
	})
	require.NoError(t, err)
	assert.Empty(t, chosen)
}

func TestOpenAIProvider_ChooseRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(t, func(openai.ChatCompletionRequest) (string, int) {
		if calls.Add(1) == 1 {
			return "", http.StatusServiceUnavailable
		}
		return `{"linkedin_url":"https://ln.test/in/ada-1"}`, http.StatusOK
	})
	defer server.Close()

	p := provider.NewOpenAIProvider("",
		provider.WithBaseURL("key", server.URL),
		provider.WithInitialDelay(time.Millisecond),
	)
	chosen, err := p.Choose(context.Background(), []scrape.Record{
		scrape.NewRecord("Ada Lovelace", "https://ln.test/in/ada-1", "Ada Lovelace"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://ln.test/in/ada-1", chosen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIProvider_ChooseEmptyCandidates(t *testing.T) {
	p := provider.NewOpenAIProvider("unused")
	chosen, err := p.Choose(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, chosen)
}

func TestOpenAIProvider_ParseSpeakers(t *testing.T) {
	server := chatServer(t, func(req openai.ChatCompletionRequest) (string, int) {
		assert.Contains(t, req.Messages[1].Content, "1. Schedulers - Ada Lovelace")
		return `{"speakers":[{"speaker_name":"Ada Lovelace","talk_title":"Schedulers"}]}`, http.StatusOK
	})
	defer server.Close()

	p := provider.NewOpenAIProvider("", provider.WithBaseURL("key", server.URL))
	speakers, err := p.ParseSpeakers(context.Background(), []string{"Schedulers - Ada Lovelace"})
	require.NoError(t, err)
	require.Len(t, speakers, 1)
	assert.Equal(t, "Ada Lovelace", speakers[0].SpeakerName)
	assert.Equal(t, "Schedulers", speakers[0].TalkTitle)
}
