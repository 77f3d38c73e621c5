package phantom_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentwatch/talentwatch/domain/scrape"
	"github.com/talentwatch/talentwatch/infrastructure/phantom"
)

func TestClient_ListBatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/containers/fetch-all", r.URL.Path)
		require.Equal(t, "agent-1", r.URL.Query().Get("agentId"))
		require.Equal(t, "secret", r.Header.Get("X-Phantombuster-Key"))
		fmt.Fprint(w, `{"containers":[
			{"id":"200","launchedAt":1756600000000,"endedAt":1756600060000},
			{"id":"100","launchedAt":1756500000000,"endedAt":1756500060000}
		]}`)
	}))
	defer server.Close()

	client := phantom.NewClient("secret", phantom.WithBaseURL(server.URL))
	batches, err := client.ListBatches(context.Background(), "agent-1")
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "200", batches[0].ID())
	assert.Equal(t, time.UnixMilli(1756600060000).UTC(), batches[0].FetchedAt())
}

func TestClient_FetchBatchInlineResult(t *testing.T) {
	rows := `[{"query":"https://ln.test/c/acme","profileUrl":"https://ln.test/in/ada","name":"Ada Lovelace","firstName":"Ada","lastName":"Lovelace","job":"Analyst","location":"London","connectionDegree":"2nd","timestamp":"2026-03-01T12:00:00.000Z"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/containers/fetch-result-object", r.URL.Path)
		require.Equal(t, "100", r.URL.Query().Get("id"))
		resp, _ := json.Marshal(map[string]string{"resultObject": rows})
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	client := phantom.NewClient("secret", phantom.WithBaseURL(server.URL))
	records, err := client.FetchBatch(context.Background(), "100")
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "https://ln.test/c/acme", r.Query())
	assert.Equal(t, "https://ln.test/in/ada", r.ProfileURL())
	assert.Equal(t, "Ada Lovelace", r.Name())
	assert.Equal(t, "Analyst", r.Title())
	assert.Equal(t, "2nd", r.Degree())
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), r.ObservedAt())
}

func TestClient_FetchBatchOffloadedResult(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/containers/fetch-result-object", func(w http.ResponseWriter, r *http.Request) {
		inner, _ := json.Marshal(map[string]string{"jsonUrl": server.URL + "/payload.json"})
		resp, _ := json.Marshal(map[string]string{"resultObject": string(inner)})
		_, _ = w.Write(resp)
	})
	mux.HandleFunc("/payload.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Phantombuster-Key"), "offloaded payload fetch must not leak the API key")
		fmt.Fprint(w, `[{"query":"https://ln.test/c/acme","profileUrl":"https://ln.test/in/bob","name":"Bob"}]`)
	})

	client := phantom.NewClient("secret", phantom.WithBaseURL(server.URL))
	records, err := client.FetchBatch(context.Background(), "100")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://ln.test/in/bob", records[0].ProfileURL())
}

func TestClient_FetchBatchEmptyResultObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultObject":""}`)
	}))
	defer server.Close()

	client := phantom.NewClient("secret", phantom.WithBaseURL(server.URL))
	records, err := client.FetchBatch(context.Background(), "100")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_TransientStatusIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := phantom.NewClient("secret", phantom.WithBaseURL(server.URL))
	_, err := client.ListBatches(context.Background(), "agent-1")
	require.ErrorIs(t, err, scrape.ErrUnavailable)

	_, err = client.FetchBatch(context.Background(), "100")
	require.ErrorIs(t, err, scrape.ErrUnavailable)
}

func TestClient_ClientErrorIsNotUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := phantom.NewClient("bad-key", phantom.WithBaseURL(server.URL))
	_, err := client.ListBatches(context.Background(), "agent-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, scrape.ErrUnavailable)
}

func TestEmployeeFilter(t *testing.T) {
	companies := map[string]string{"https://ln.test/c/acme": "Acme Corp"}
	records := []scrape.Record{
		scrape.NewRecord("https://ln.test/c/acme", "https://ln.test/in/ada", "Ada"),
		scrape.NewRecord("https://ln.test/c/acme", "https://ln.test/in/bob", "Bob").WithError("profile not found"),
		scrape.NewRecord("https://ln.test/c/other", "https://ln.test/in/eve", "Eve"),
	}

	filtered := phantom.EmployeeFilter(companies).Filter(records)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Acme Corp", filtered[0].Company())
	assert.Empty(t, filtered[1].Company())
}

func TestProfileFinderFilter(t *testing.T) {
	records := []scrape.Record{
		scrape.NewRecord("Ada Lovelace", "https://ln.test/in/ada", ""),
		scrape.NewRecord("Bob Harris", "", ""),
	}

	filtered := phantom.ProfileFinderFilter().Filter(records)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Ada Lovelace", filtered[0].Query())
}
