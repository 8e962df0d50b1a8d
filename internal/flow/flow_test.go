package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/newscatcherapi/catchall-go/catchall"
)

// fakeLLM answers planner calls with queued plans and synthesizer calls with
// a fixed report.
type fakeLLM struct {
	plans   []string
	prompts []string
}

func (f *fakeLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if strings.Contains(system, "research planner") {
		out := f.plans[0]
		if len(f.plans) > 1 {
			f.plans = f.plans[1:]
		}
		return out, nil
	}
	return "# Report\n\nSynthesized findings.", nil
}

type fakeSearcher struct {
	pages []*catchall.PullResponse
	reqs  []catchall.SubmitRequest
}

func (f *fakeSearcher) Search(ctx context.Context, req catchall.SubmitRequest) (*catchall.PullResponse, error) {
	f.reqs = append(f.reqs, req)
	page := f.pages[0]
	if len(f.pages) > 1 {
		f.pages = f.pages[1:]
	}
	return page, nil
}

func TestRunStopsOnFirstResults(t *testing.T) {
	llm := &fakeLLM{plans: []string{`{"query":"tech M&A deals","context":"acquisitions","schema":"company, value"}`}}
	searcher := &fakeSearcher{pages: []*catchall.PullResponse{{
		Status:  "completed",
		Records: []catchall.Record{{Title: "Deal"}},
	}}}

	res, err := NewRunner(llm, searcher, nil).Run(context.Background(), "What M&A happened this week?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != 1 {
		t.Fatalf("expected 1 iteration, got %d", res.Iterations)
	}
	if res.Plan.Query != "tech M&A deals" || res.Plan.Schema != "company, value" {
		t.Fatalf("unexpected plan %+v", res.Plan)
	}
	if len(searcher.reqs) != 1 || searcher.reqs[0].Context != "acquisitions" {
		t.Fatalf("unexpected submit %+v", searcher.reqs)
	}
	if !strings.Contains(res.Report, "Synthesized findings.") {
		t.Fatalf("unexpected report %q", res.Report)
	}
	if res.RunID == "" {
		t.Fatal("missing run id")
	}
}

func TestRunReplansOnEmptyResults(t *testing.T) {
	llm := &fakeLLM{plans: []string{
		`{"query":"too narrow"}`,
		`{"query":"broader search"}`,
	}}
	searcher := &fakeSearcher{pages: []*catchall.PullResponse{
		{Status: "completed"},
		{Status: "completed", Records: []catchall.Record{{Title: "Found"}}},
	}}

	res, err := NewRunner(llm, searcher, nil).Run(context.Background(), "obscure topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != 2 {
		t.Fatalf("expected 2 iterations, got %d", res.Iterations)
	}
	if res.Plan.Query != "broader search" {
		t.Fatalf("unexpected final plan %+v", res.Plan)
	}
	// The replanning prompt must carry the empty-result feedback.
	feedback := llm.prompts[1]
	if !strings.Contains(feedback, "returned no results") || !strings.Contains(feedback, "too narrow") {
		t.Fatalf("feedback missing from replan prompt: %q", feedback)
	}
}

func TestRunGivesUpAfterMaxIterations(t *testing.T) {
	llm := &fakeLLM{plans: []string{`{"query":"never matches"}`}}
	searcher := &fakeSearcher{pages: []*catchall.PullResponse{{Status: "completed"}}}

	res, err := NewRunner(llm, searcher, nil).Run(context.Background(), "nothing exists")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != maxIterations {
		t.Fatalf("expected %d iterations, got %d", maxIterations, res.Iterations)
	}
	if !strings.Contains(res.Report, "No results") || !strings.Contains(res.Report, "never matches") {
		t.Fatalf("expected no-results report listing tried queries, got %q", res.Report)
	}
	if len(res.TriedQueries) != maxIterations {
		t.Fatalf("expected %d tried queries, got %v", maxIterations, res.TriedQueries)
	}
}

func TestWithMaxIterations(t *testing.T) {
	llm := &fakeLLM{plans: []string{`{"query":"still nothing"}`}}
	searcher := &fakeSearcher{pages: []*catchall.PullResponse{{Status: "completed"}}}

	res, err := NewRunner(llm, searcher, nil).WithMaxIterations(2).Run(context.Background(), "rare topic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != 2 {
		t.Fatalf("expected 2 iterations, got %d", res.Iterations)
	}
}

func TestPlanFallsBackToRawPrompt(t *testing.T) {
	llm := &fakeLLM{plans: []string{"I think you should search for things."}}
	searcher := &fakeSearcher{pages: []*catchall.PullResponse{{
		Status:  "completed",
		Records: []catchall.Record{{Title: "Hit"}},
	}}}

	res, err := NewRunner(llm, searcher, nil).Run(context.Background(), "plain prompt")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Plan.Query != "plain prompt" {
		t.Fatalf("expected raw prompt fallback, got %+v", res.Plan)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"query":"a"}`, `{"query":"a"}`},
		{"```json\n{\"query\":\"a\"}\n```", `{"query":"a"}`},
		{"```\n{\"query\":\"a\"}\n```", `{"query":"a"}`},
		{"Here is the plan: {\"query\":\"a\"} hope it helps", `{"query":"a"}`},
		{"no json here", "no json here"},
	}
	for _, c := range cases {
		if got := extractJSON(c.in); got != c.want {
			t.Errorf("extractJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
