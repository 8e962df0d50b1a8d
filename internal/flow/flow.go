// Package flow implements the deep search pipeline: plan a CatchAll query
// from a research prompt, run it, and synthesize the pulled records into a
// report. The loop retries planning with feedback when a search comes back
// empty.
package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/newscatcherapi/catchall-go/catchall"
	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/provider"
)

const maxIterations = 5

const plannerSystem = `You are a news research planner. Turn the user's research
prompt into a CatchAll search job. Respond with a single JSON object:
{"query": "...", "context": "...", "schema": "..."}
query is the natural language search, context disambiguates it, schema lists
the fields to extract from each article. Respond with JSON only.`

const synthesizerSystem = `You are a news analyst. Write a concise markdown
research report from the search results you are given. Lead with the key
findings, back every claim with the cited sources, and end with open
questions worth a follow-up search. Do not invent facts absent from the
results.`

// Searcher is the slice of the CatchAll surface the flow needs. The client
// plus poller satisfy it via Runner's default wiring.
type Searcher interface {
	Search(ctx context.Context, req catchall.SubmitRequest) (*catchall.PullResponse, error)
}

// Plan is the LLM's structured answer to a research prompt.
type Plan struct {
	Query   string `json:"query"`
	Context string `json:"context"`
	Schema  string `json:"schema"`
}

// Result is one finished deep search run.
type Result struct {
	RunID        string
	Plan         Plan
	Iterations   int
	TriedQueries []string
	Page         *catchall.PullResponse
	Report       string
	ReportPath   string
}

// Runner wires the planner, the search and the synthesizer together.
type Runner struct {
	llm      provider.Completer
	searcher Searcher
	store    *report.Store
	maxIters int
	logger   *log.Logger
}

// NewRunner assembles a deep search runner. store may be nil to skip saving.
func NewRunner(llm provider.Completer, searcher Searcher, store *report.Store) *Runner {
	return &Runner{
		llm:      llm,
		searcher: searcher,
		store:    store,
		maxIters: maxIterations,
		logger:   log.New(log.Writer(), "[FLOW] ", log.LstdFlags),
	}
}

// WithMaxIterations caps the replan loop.
func (r *Runner) WithMaxIterations(n int) *Runner {
	if n > 0 {
		r.maxIters = n
	}
	return r
}

// Run executes the full pipeline for one research prompt.
func (r *Runner) Run(ctx context.Context, prompt string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	feedback := ""

	for iter := 1; iter <= r.maxIters; iter++ {
		res.Iterations = iter

		plan, err := r.plan(ctx, prompt, feedback)
		if err != nil {
			return nil, fmt.Errorf("plan iteration %d: %w", iter, err)
		}
		res.Plan = plan
		res.TriedQueries = append(res.TriedQueries, plan.Query)
		r.logger.Printf("run %s: iteration %d, query %q", res.RunID, iter, plan.Query)

		page, err := r.searcher.Search(ctx, catchall.SubmitRequest{
			Query:   plan.Query,
			Context: plan.Context,
			Schema:  plan.Schema,
		})
		if err != nil {
			return nil, fmt.Errorf("search iteration %d: %w", iter, err)
		}
		res.Page = page

		if page.Count() > 0 {
			break
		}
		feedback = fmt.Sprintf("The query %q returned no results. Broaden or rephrase it.", plan.Query)
		r.logger.Printf("run %s: iteration %d returned nothing, replanning", res.RunID, iter)
	}

	md, err := r.synthesize(ctx, prompt, res.TriedQueries, res.Page)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	res.Report = md

	if r.store != nil {
		path, err := r.store.Save(report.Report{
			Title:    prompt,
			Query:    res.Plan.Query,
			Markdown: md,
			Data:     res.Page,
		})
		if err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
		res.ReportPath = path
	}
	return res, nil
}

func (r *Runner) plan(ctx context.Context, prompt, feedback string) (Plan, error) {
	user := "Research prompt: " + prompt
	if feedback != "" {
		user += "\n\nFeedback from the previous attempt: " + feedback
	}
	raw, err := r.llm.Generate(ctx, plannerSystem, user)
	if err != nil {
		return Plan{}, err
	}

	var plan Plan
	if err := json.Unmarshal([]byte(extractJSON(raw)), &plan); err != nil || plan.Query == "" {
		// An unparseable plan still names a topic; search the prompt as-is.
		r.logger.Printf("planner output not parseable, falling back to raw prompt")
		return Plan{Query: prompt}, nil
	}
	return plan, nil
}

func (r *Runner) synthesize(ctx context.Context, prompt string, tried []string, page *catchall.PullResponse) (string, error) {
	if page.Count() == 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "# No results\n\nNo news coverage was found for: %s\n\nQueries tried:\n", prompt)
		for _, q := range tried {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		return b.String(), nil
	}
	user := fmt.Sprintf("Research prompt: %s\n\nSearch results:\n\n%s", prompt, report.FormatPage(page))
	return r.llm.Generate(ctx, synthesizerSystem, user)
}

// extractJSON strips a markdown code fence when the model wraps its JSON in
// one, otherwise cuts from the first { to the last }.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
