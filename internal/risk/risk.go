// Package risk runs the supply chain risk pipeline: pull news intelligence
// from a monitor, an existing job or a fresh search, then push it through
// three sequential analysis stages to produce an executive report.
package risk

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/newscatcherapi/catchall-go/catchall"
	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/provider"
)

// Default search parameters for the automotive supply chain use case.
const (
	DefaultQuery   = "Supply chain disruptions and logistics delays from suppliers affecting production at car manufacturers in EU"
	DefaultContext = "Focus on logistics bottlenecks, transport delays, semiconductor shortages, raw material scarcity, labour strikes, and geopolitical disruptions"
	DefaultSchema  = "Supplier [NAME] Event [SHORT_EVENT_NAME] Impact [SHORT_DESCRIPTION_OF_IMPACT_ON_PRODUCTION_OR_SUPPLY] Severity [High / Medium / Low]"
)

// SourceKind selects where the pipeline gets its news data.
type SourceKind string

const (
	SourceMonitor SourceKind = "monitor"
	SourceJob     SourceKind = "job"
	SourceNew     SourceKind = "new"
)

// Source names one data source: a monitor ID, a job ID, or nothing for a
// fresh search.
type Source struct {
	Kind SourceKind
	ID   string
}

// Pipeline fetches intelligence and runs the analysis stages.
type Pipeline struct {
	client *catchall.Client
	policy catchall.PollPolicy
	llm    provider.Completer
	store  *report.Store
	logger *log.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewPipeline assembles a pipeline. store may be nil to skip saving.
func NewPipeline(client *catchall.Client, policy catchall.PollPolicy, llm provider.Completer, store *report.Store) *Pipeline {
	return &Pipeline{
		client: client,
		policy: policy,
		llm:    llm,
		store:  store,
		logger: log.New(log.Writer(), "[RISK] ", log.LstdFlags),
		now:    time.Now,
	}
}

// Result is one finished pipeline run.
type Result struct {
	Source       Source
	Page         *catchall.PullResponse
	Intelligence string
	Analysis     string
	Report       string
	ReportPath   string
}

// Run fetches data from the source and produces the executive report.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Result, error) {
	page, err := p.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	normalize(page)
	p.logger.Printf("source %s: %d record(s) covering %s to %s",
		src.Kind, page.Count(), page.DateRange.StartDate, page.DateRange.EndDate)

	res := &Result{Source: src, Page: page}
	if res.Intelligence, err = p.gatherIntelligence(ctx, page); err != nil {
		return nil, fmt.Errorf("gather intelligence: %w", err)
	}
	if res.Analysis, err = p.analyzeRisks(ctx, res.Intelligence); err != nil {
		return nil, fmt.Errorf("analyze risks: %w", err)
	}
	if res.Report, err = p.writeReport(ctx, res.Analysis, page); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	if p.store != nil {
		path, err := p.store.Save(report.Report{
			Title:    "risk report",
			Query:    page.Query,
			Markdown: res.Report,
			Data:     page,
		})
		if err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
		res.ReportPath = path
	}
	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, src Source) (*catchall.PullResponse, error) {
	switch src.Kind {
	case SourceMonitor:
		if src.ID == "" {
			return nil, fmt.Errorf("monitor source needs an id")
		}
		return p.client.PullMonitor(ctx, src.ID)
	case SourceJob:
		if src.ID == "" {
			return nil, fmt.Errorf("job source needs an id")
		}
		return p.client.Pull(ctx, src.ID, 1, 100)
	case SourceNew:
		return p.runNewJob(ctx)
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// runNewJob submits the default search and waits for full completion; the
// risk stages want the complete picture, not a partial stream.
func (p *Pipeline) runNewJob(ctx context.Context) (*catchall.PullResponse, error) {
	resp, err := p.client.Submit(ctx, catchall.SubmitRequest{
		Query:   DefaultQuery,
		Context: DefaultContext,
		Schema:  DefaultSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	p.logger.Printf("job created: %s", resp.JobID)

	poller := catchall.NewPoller(p.client, p.policy)
	err = poller.WaitForCompletion(ctx, resp.JobID, func(step catchall.Step) {
		p.logger.Printf("processing: %s (step %d)", step.Status, step.Order)
	})
	if err != nil {
		return nil, fmt.Errorf("wait for job %s: %w", resp.JobID, err)
	}
	return p.client.Pull(ctx, resp.JobID, 1, 100)
}

// normalize papers over the shape differences between monitor and job pulls
// so the stages see one format.
func normalize(page *catchall.PullResponse) {
	if page.Status == "" {
		page.Status = catchall.StatusCompleted
	}
	if page.ValidRecords == 0 {
		page.ValidRecords = page.Count()
	}
}

// Stage 1: distill the raw records into a risk intelligence briefing.
func (p *Pipeline) gatherIntelligence(ctx context.Context, page *catchall.PullResponse) (string, error) {
	system := "You are a news intelligence officer for EU automotive manufacturers. " +
		"Extract every supply chain risk event from the provided records: supplier, event, impact on production, severity. " +
		"Keep the source citations with each event. Do not add events absent from the data."
	user := fmt.Sprintf("Records: %d\nPeriod: %s to %s\n\n%s",
		page.ValidRecords, page.DateRange.StartDate, page.DateRange.EndDate,
		report.FormatPage(page))
	return p.llm.Generate(ctx, system, user)
}

// Stage 2: categorize and rank the identified risks.
func (p *Pipeline) analyzeRisks(ctx context.Context, intelligence string) (string, error) {
	system := "You are a supply chain risk analyst. Categorize the identified risk events " +
		"(logistics, semiconductors, raw materials, labour, geopolitical), rate each High, Medium or Low, " +
		"and rank them by likely production impact on EU car manufacturers."
	return p.llm.Generate(ctx, system, intelligence)
}

// Stage 3: turn the analysis into an executive report.
func (p *Pipeline) writeReport(ctx context.Context, analysis string, page *catchall.PullResponse) (string, error) {
	system := "You are writing for automotive supply chain executives. Produce a markdown report with: " +
		"an executive summary, the top risks with severity and affected suppliers, recommended mitigations, " +
		"and a watchlist for the coming weeks. Be specific and cite sources."
	user := fmt.Sprintf("Date: %s\nRecords analyzed: %d\n\n%s",
		p.now().Format("2006-01-02"), page.ValidRecords, analysis)
	return p.llm.Generate(ctx, system, user)
}
