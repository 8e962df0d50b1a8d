package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newscatcherapi/catchall-go/internal/report"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	return New(report.NewStore(dir)), dir
}

func TestHandleDeliveryPersistsReport(t *testing.T) {
	srv, dir := newTestServer(t)

	payload := map[string]any{
		"job_id":        "mon-1",
		"query":         "supply chain risks",
		"status":        "completed",
		"valid_records": 1,
		"all_records": []map[string]any{{
			"record_title": "Port congestion",
			"citations":    []map[string]string{{"title": "Source", "link": "https://example.com"}},
		}},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/catchall", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Saved   string `json:"saved"`
		Records int    `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Records != 1 {
		t.Fatalf("expected 1 record, got %d", resp.Records)
	}

	raw, err := os.ReadFile(resp.Saved)
	if err != nil {
		t.Fatalf("read saved report: %v", err)
	}
	if !strings.Contains(string(raw), "Port congestion") {
		t.Fatalf("saved report missing record:\n%s", raw)
	}
	if !strings.HasPrefix(filepath.Base(resp.Saved), "supply-chain-risks_") {
		t.Fatalf("unexpected report name %s", resp.Saved)
	}
	if len(listDir(t, dir)) != 2 {
		t.Fatal("expected markdown plus json sidecar")
	}
}

func TestHandleDeliveryRejectsBadPayloads(t *testing.T) {
	srv, dir := newTestServer(t)

	for name, body := range map[string]string{
		"malformed": `{"job_id": `,
		"no job id": `{"status": "completed"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/catchall", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}
	if len(listDir(t, dir)) != 0 {
		t.Fatal("rejected deliveries must not be persisted")
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func listDir(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatal(err)
	}
	return entries
}
