package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newscatcherapi/catchall-go/catchall"
)

// stageLLM records every Generate call and answers with the stage index.
type stageLLM struct {
	systems []string
	prompts []string
}

func (s *stageLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	s.systems = append(s.systems, system)
	s.prompts = append(s.prompts, prompt)
	switch len(s.systems) {
	case 1:
		return "briefing: supplier X halted", nil
	case 2:
		return "analysis: logistics High", nil
	default:
		return "# Executive Report\n\nTop risk: supplier X.", nil
	}
}

func newPipeline(t *testing.T, handler http.Handler, llm *stageLLM) *Pipeline {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := catchall.New("test-key", catchall.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	policy := catchall.PollPolicy{InitialDelay: time.Millisecond, Interval: time.Millisecond, MaxAttempts: 3}
	return NewPipeline(client, policy, llm, nil)
}

func TestRunFromJobSourceRunsAllStages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /catchAll/pull/job-9", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "completed",
			"valid_records": 1,
			"all_records": []map[string]any{{
				"record_title": "Port strike halts deliveries",
				"enrichment":   map[string]any{"schema_based_summary": "Strike at Rotterdam delays parts."},
			}},
			"date_range": map[string]string{"start_date": "2026-08-01", "end_date": "2026-08-20"},
		})
	})
	llm := &stageLLM{}
	pipe := newPipeline(t, mux, llm)

	res, err := pipe.Run(context.Background(), Source{Kind: SourceJob, ID: "job-9"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(llm.systems) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(llm.systems))
	}
	if !strings.Contains(llm.prompts[0], "Port strike halts deliveries") {
		t.Fatalf("stage 1 missing record data: %q", llm.prompts[0])
	}
	if llm.prompts[1] != "briefing: supplier X halted" {
		t.Fatalf("stage 2 should consume stage 1 output, got %q", llm.prompts[1])
	}
	if !strings.Contains(llm.prompts[2], "analysis: logistics High") {
		t.Fatalf("stage 3 should consume stage 2 output, got %q", llm.prompts[2])
	}
	if !strings.Contains(res.Report, "Executive Report") {
		t.Fatalf("unexpected report %q", res.Report)
	}
}

func TestRunFromMonitorNormalizesShape(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /catchAll/monitors/pull/mon-1", func(w http.ResponseWriter, r *http.Request) {
		// Monitor pulls omit status and valid_records.
		json.NewEncoder(w).Encode(map[string]any{
			"monitor_id":  "mon-1",
			"all_records": []map[string]any{{"record_title": "Chip shortage"}, {"record_title": "Rail strike"}},
		})
	})
	pipe := newPipeline(t, mux, &stageLLM{})

	res, err := pipe.Run(context.Background(), Source{Kind: SourceMonitor, ID: "mon-1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Page.Status != catchall.StatusCompleted {
		t.Fatalf("expected normalized status, got %q", res.Page.Status)
	}
	if res.Page.ValidRecords != 2 {
		t.Fatalf("expected backfilled valid_records, got %d", res.Page.ValidRecords)
	}
}

func TestRunNewJobWaitsForCompletion(t *testing.T) {
	var statusCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /catchAll/submit", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != DefaultQuery {
			t.Errorf("expected default query, got %v", body["query"])
		}
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-new"})
	})
	mux.HandleFunc("GET /catchAll/status/job-new", func(w http.ResponseWriter, r *http.Request) {
		statusCalls++
		done := statusCalls >= 2
		json.NewEncoder(w).Encode(map[string]any{
			"status": "in_progress",
			"steps": []map[string]any{
				{"status": "completed", "completed": done, "order": 1},
			},
		})
	})
	mux.HandleFunc("GET /catchAll/pull/job-new", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "completed",
			"valid_records": 1,
			"all_records":   []map[string]any{{"record_title": "Event"}},
		})
	})
	pipe := newPipeline(t, mux, &stageLLM{})

	res, err := pipe.Run(context.Background(), Source{Kind: SourceNew})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if statusCalls < 2 {
		t.Fatalf("expected repeated status polls, got %d", statusCalls)
	}
	if res.Page.Count() != 1 {
		t.Fatalf("expected pulled records, got %d", res.Page.Count())
	}
}

func TestRunRejectsBadSource(t *testing.T) {
	pipe := newPipeline(t, http.NewServeMux(), &stageLLM{})
	if _, err := pipe.Run(context.Background(), Source{Kind: SourceMonitor}); err == nil {
		t.Fatal("expected error for monitor source without id")
	}
	if _, err := pipe.Run(context.Background(), Source{Kind: "spreadsheet"}); err == nil {
		t.Fatal("expected error for unknown source kind")
	}
}
