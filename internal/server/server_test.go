// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/neurotrack/internal/briefing"
	"github.com/pdiddy/neurotrack/internal/ingest"
	"github.com/pdiddy/neurotrack/internal/metrics"
	"github.com/pdiddy/neurotrack/internal/store"
	"github.com/pdiddy/neurotrack/pkg/types"
)

type stubIngestor struct {
	summary ingest.Summary
	err     error
	calls   int
}

func (s *stubIngestor) Run(_ context.Context) (ingest.Summary, error) {
	s.calls++
	return s.summary, s.err
}

func testServer(t *testing.T, ingestor Ingestor, briefer BriefingFunc) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.New(types.StoreConfig{DataDir: filepath.Join(t.TempDir(), "data")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := New(st, ingestor, briefer, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func seedRecords(t *testing.T, st *store.Store) {
	t.Helper()
	_, err := st.UpsertBatch(context.Background(), []types.Record{
		{URL: "https://x/1", Title: "Neuralink implant trial", Category: types.CategoryNews, Provider: "Google News", Date: "2024-02-20"},
		{URL: "https://x/2", Title: "Speech decoding advances", Category: types.CategoryJournal, Provider: "PubMed", Date: "2024-02-15"},
		{URL: "https://x/3", Title: "EEG transformer survey", Category: types.CategoryPreprint, Provider: "arXiv", Date: "2024-02-10"},
	})
	require.NoError(t, err)
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func doRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthz(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp := getJSON(t, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecordsEndpoint(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	var page store.SearchPage
	resp := getJSON(t, ts.URL+"/api/records", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 3)
}

func TestRecordsEndpointFilters(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by category", "?category=journal", 1},
		{"category all", "?category=all", 3},
		{"by provider", "?provider=arXiv", 1},
		{"free text", "?q=neuralink", 1},
		{"date range", "?from=2024-02-12&to=2024-02-28", 2},
		{"no match", "?q=nothing-here", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page store.SearchPage
			getJSON(t, ts.URL+"/api/records"+tt.query, &page)
			assert.Equal(t, tt.want, page.Total)
		})
	}
}

func TestRecordsEndpointSortAndPaging(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	var page store.SearchPage
	getJSON(t, ts.URL+"/api/records?sort=date&page=1&page_size=2", &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "https://x/1", page.Items[0].URL)
	assert.True(t, page.HasMore)
}

func TestStatsEndpoint(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	var stats types.Stats
	resp := getJSON(t, ts.URL+"/api/stats", &stats)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Journals)
	assert.Equal(t, 1, stats.Preprints)
	assert.Equal(t, 1, stats.News)
}

func TestProvidersEndpoint(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	var body struct {
		Providers []string `json:"providers"`
	}
	getJSON(t, ts.URL+"/api/providers", &body)
	assert.Equal(t, []string{"Google News", "PubMed", "arXiv"}, body.Providers)

	getJSON(t, ts.URL+"/api/providers?category=journal", &body)
	assert.Equal(t, []string{"PubMed"}, body.Providers)
}

func TestTrendingEndpoint(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	var body struct {
		Keywords []types.KeywordCount `json:"keywords"`
	}
	resp := getJSON(t, ts.URL+"/api/trending?limit=5", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Keywords)
	assert.LessOrEqual(t, len(body.Keywords), 5)
}

func TestIngestEndpoint(t *testing.T) {
	ingestor := &stubIngestor{summary: ingest.Summary{Fetched: 4, Stored: 3, Skipped: 1}}
	ts, _ := testServer(t, ingestor, nil)

	resp := postJSON(t, ts.URL+"/api/ingest", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary ingest.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 3, summary.Stored)
	assert.Equal(t, 1, ingestor.calls)
}

func TestIngestEndpointNotConfigured(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp := postJSON(t, ts.URL+"/api/ingest", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestIngestEndpointFailure(t *testing.T) {
	ingestor := &stubIngestor{err: fmt.Errorf("feeds down")}
	ts, _ := testServer(t, ingestor, nil)

	resp := postJSON(t, ts.URL+"/api/ingest", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCollectionsLifecycle(t *testing.T) {
	ts, _ := testServer(t, nil, nil)

	// Presets are listed from the start.
	var list struct {
		Collections []types.Collection `json:"collections"`
	}
	getJSON(t, ts.URL+"/api/collections", &list)
	presetCount := len(list.Collections)
	require.NotZero(t, presetCount)

	// Create a custom collection.
	resp := postJSON(t, ts.URL+"/api/collections", map[string]string{"name": "Reading list", "icon": "📚"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	getJSON(t, ts.URL+"/api/collections", &list)
	assert.Len(t, list.Collections, presetCount+1)

	// Delete it again.
	resp = doRequest(t, http.MethodDelete, fmt.Sprintf("%s/api/collections/%d", ts.URL, created.ID))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateCollectionRequiresName(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp := postJSON(t, ts.URL+"/api/collections", map[string]string{"icon": "📚"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCollectionPreset(t *testing.T) {
	ts, _ := testServer(t, nil, nil)

	var list struct {
		Collections []types.Collection `json:"collections"`
	}
	getJSON(t, ts.URL+"/api/collections", &list)
	require.NotEmpty(t, list.Collections)
	require.True(t, list.Collections[0].IsPreset)

	resp := doRequest(t, http.MethodDelete, fmt.Sprintf("%s/api/collections/%d", ts.URL, list.Collections[0].ID))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteCollectionNotFound(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp := doRequest(t, http.MethodDelete, ts.URL+"/api/collections/99999")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCollectionItemsEndpoints(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	resp := postJSON(t, ts.URL+"/api/collections", map[string]string{"name": "Manual picks"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	base := fmt.Sprintf("%s/api/collections/%d/items", ts.URL, created.ID)

	resp = postJSON(t, base, map[string]string{"url": "https://x/2"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page store.SearchPage
	getJSON(t, base, &page)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "https://x/2", page.Items[0].URL)

	resp = doRequest(t, http.MethodDelete, base+"?url=https://x/2")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getJSON(t, base, &page)
	assert.Zero(t, page.Total)
}

func TestSubscriberEndpoints(t *testing.T) {
	ts, _ := testServer(t, nil, nil)

	resp := postJSON(t, ts.URL+"/api/subscribers", map[string]string{"email": "a@example.com", "name": "A"})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list struct {
		Subscribers []types.Subscriber `json:"subscribers"`
	}
	getJSON(t, ts.URL+"/api/subscribers", &list)
	require.Len(t, list.Subscribers, 1)
	assert.Equal(t, "a@example.com", list.Subscribers[0].Email)

	resp = doRequest(t, http.MethodDelete, ts.URL+"/api/subscribers?email=a@example.com")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getJSON(t, ts.URL+"/api/subscribers", &list)
	assert.Empty(t, list.Subscribers)
}

func TestAddSubscriberRequiresEmail(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp := postJSON(t, ts.URL+"/api/subscribers", map[string]string{"name": "no email"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBriefingEndpoint(t *testing.T) {
	briefer := func(_ context.Context) (briefing.Result, error) {
		return briefing.Result{Sent: 2, Records: 5}, nil
	}
	ts, _ := testServer(t, nil, briefer)

	resp := postJSON(t, ts.URL+"/api/briefing/send", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result briefing.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Sent)
}

func TestBriefingEndpointNotConfigured(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp := postJSON(t, ts.URL+"/api/briefing/send", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := testServer(t, nil, nil)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestLatencyObserved(t *testing.T) {
	ts, st := testServer(t, nil, nil)
	seedRecords(t, st)

	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	getJSON(t, ts.URL+"/api/records", nil)
	// DELETE /healthz exercises a route/method/status combination nothing
	// else in the suite touches.
	resp := doRequest(t, http.MethodDelete, ts.URL+"/healthz")
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	after := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	assert.Greater(t, after, before)
}

func TestRequestLogging(t *testing.T) {
	st, err := store.New(types.StoreConfig{DataDir: filepath.Join(t.TempDir(), "data")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var buf bytes.Buffer
	srv := New(st, nil, nil, zerolog.New(&buf))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	getJSON(t, ts.URL+"/healthz", nil)

	logged := buf.String()
	assert.Contains(t, logged, `"message":"request"`)
	assert.Contains(t, logged, `"path":"/healthz"`)
	assert.Contains(t, logged, `"status":200`)
}
