package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolabz/wob-crawler/internal/jobs"
	"github.com/evolabz/wob-crawler/internal/scraper"
)

type stubRunner struct {
	summary *scraper.Summary
}

func (r *stubRunner) Run(ctx context.Context, maxBooks int) (*scraper.Summary, error) {
	return r.summary, nil
}

type stubCounter struct {
	count int64
	err   error
}

func (c *stubCounter) Count(ctx context.Context) (int64, error) {
	return c.count, c.err
}

func newTestServer(t *testing.T) (*httptest.Server, *jobs.Manager) {
	t.Helper()
	manager := jobs.NewManager(&stubRunner{summary: &scraper.Summary{Accepted: 2, Skipped: 1}}, slog.Default())
	handlers := NewHandlers(manager, &stubCounter{count: 42}, slog.Default())
	server := httptest.NewServer(handlers.Router())
	t.Cleanup(server.Close)
	return server, manager
}

func TestStartRun(t *testing.T) {
	server, manager := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json",
		strings.NewReader(`{"max_books": 5}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var run jobs.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, 5, run.MaxBooks)
	assert.NotEmpty(t, run.ID)

	// The stub runner finishes immediately; the run becomes queryable.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tracked, ok := manager.Get(run.ID)
		require.True(t, ok)
		if tracked.Status == jobs.StatusCompleted {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run never completed")
}

func TestStartRunRejectsInvalidBudget(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json",
		strings.NewReader(`{"max_books": 0}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStartRunRejectsMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json",
		strings.NewReader(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRun(t *testing.T) {
	server, manager := newTestServer(t)

	started, err := manager.Start(context.Background(), 3)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/api/v1/runs/" + started.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run jobs.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, started.ID, run.ID)
}

func TestGetRunNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/runs/00000000-0000-0000-0000-000000000001")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetRunInvalidID(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/runs/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCountBooks(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/books/count")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(42), body["count"])
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
