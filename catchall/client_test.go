package catchall

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()
	_, err := New("")
	if err == nil {
		t.Fatalf("expected error for empty api key")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "CATCHALL_API_KEY") {
		t.Fatalf("error should name the missing credential: %v", err)
	}
}

func TestSubmitSendsKeyAndBody(t *testing.T) {
	t.Parallel()
	var gotKey, gotPath string
	var gotBody SubmitRequest
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(SubmitResponse{JobID: "job-1", Status: StatusSubmitted})
	}))

	resp, err := c.Submit(context.Background(), SubmitRequest{Query: "EV supply chain", Limit: 10})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.JobID != "job-1" {
		t.Fatalf("expected job-1, got %q", resp.JobID)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected x-api-key header, got %q", gotKey)
	}
	if gotPath != "/catchAll/submit" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody.Query != "EV supply chain" || gotBody.Limit != 10 {
		t.Fatalf("unexpected body %+v", gotBody)
	}
}

func TestSubmitUnauthorizedSurfacesDetail(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	}))

	_, err := c.Submit(context.Background(), SubmitRequest{Query: "anything"})
	if err == nil {
		t.Fatalf("expected error for 401")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", reqErr.StatusCode)
	}
	msg := err.Error()
	if !strings.Contains(msg, "401") || !strings.Contains(msg, "invalid key") {
		t.Fatalf("error message must carry status and detail, got %q", msg)
	}
}

func TestErrorFallsBackToRawBody(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	_, err := c.Status(context.Background(), "job-1")
	if err == nil || !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("expected raw body in error, got %v", err)
	}
}

func TestPullPaginationDefaults(t *testing.T) {
	t.Parallel()
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(PullResponse{Status: StatusFetching})
	}))

	page, err := c.Pull(context.Background(), "job-1", 0, 0)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if !strings.Contains(gotQuery, "page=1") || !strings.Contains(gotQuery, "page_size=100") {
		t.Fatalf("expected defaulted pagination, got %q", gotQuery)
	}
	if page.JobID != "job-1" {
		t.Fatalf("expected job id backfill, got %q", page.JobID)
	}
}

func TestPullMalformedBodyIsRequestError(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fetch`))
	}))

	_, err := c.Pull(context.Background(), "job-1", 1, 100)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError for malformed body, got %T: %v", err, err)
	}
	if reqErr.StatusCode != http.StatusOK {
		t.Fatalf("expected original 200 status, got %d", reqErr.StatusCode)
	}
}

func TestPullMonitorNormalisesShape(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catchAll/monitors/pull/mon-9" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"monitor_id":"mon-9","all_records":[{"record_title":"Plant halt"}]}`))
	}))

	page, err := c.PullMonitor(context.Background(), "mon-9")
	if err != nil {
		t.Fatalf("PullMonitor: %v", err)
	}
	if page.JobID != "mon-9" {
		t.Fatalf("monitor id should map onto job id, got %q", page.JobID)
	}
	if page.Status != StatusCompleted {
		t.Fatalf("missing status should default to completed, got %q", page.Status)
	}
	if page.ValidRecords != 1 {
		t.Fatalf("valid_records should default to record count, got %d", page.ValidRecords)
	}
}

func TestMonitorLifecyclePaths(t *testing.T) {
	t.Parallel()
	var paths []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"monitor_id":"mon-1","schedule":"0 9 * * *","enabled":true}`))
	}))

	ctx := context.Background()
	if _, err := c.CreateMonitor(ctx, CreateMonitorRequest{ReferenceJobID: "job-1", Schedule: "0 9 * * *"}); err != nil {
		t.Fatalf("CreateMonitor: %v", err)
	}
	if err := c.EnableMonitor(ctx, "mon-1"); err != nil {
		t.Fatalf("EnableMonitor: %v", err)
	}
	if err := c.DisableMonitor(ctx, "mon-1"); err != nil {
		t.Fatalf("DisableMonitor: %v", err)
	}
	if _, err := c.UpdateMonitorWebhook(ctx, "mon-1", WebhookConfig{URL: "https://example.com/hook"}); err != nil {
		t.Fatalf("UpdateMonitorWebhook: %v", err)
	}

	want := []string{
		"POST /catchAll/monitors/create",
		"POST /catchAll/monitors/mon-1/enable",
		"POST /catchAll/monitors/mon-1/disable",
		"PATCH /catchAll/monitors/mon-1",
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("request %d: got %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestNextRun(t *testing.T) {
	t.Parallel()
	after := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	next, ok := NextRun("0 9 * * *", after)
	if !ok {
		t.Fatalf("expected cron schedule to parse")
	}
	if next.Hour() != 9 {
		t.Fatalf("expected 09:00 firing, got %v", next)
	}
	if _, ok := NextRun("every day at 9 AM EST", after); ok {
		t.Fatalf("free-text schedule must not parse as cron")
	}
}
