package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/newscatcherapi/catchall-go/catchall"
)

const defaultSubmitLimit = 10

// Executor maps tool calls onto CatchAll client operations. It remembers when
// each job was submitted so pull_results only waits out the part of the grace
// period that has not already elapsed.
type Executor struct {
	client *catchall.Client
	policy catchall.PollPolicy
	logger *log.Logger

	mu        sync.Mutex
	submitted map[string]time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewExecutor creates an executor over client with the given polling policy.
func NewExecutor(client *catchall.Client, policy catchall.PollPolicy) *Executor {
	def := catchall.DefaultPollPolicy()
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = def.InitialDelay
	}
	if policy.Interval <= 0 {
		policy.Interval = def.Interval
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	return &Executor{
		client:    client,
		policy:    policy,
		logger:    log.New(log.Writer(), "[AGENT] ", log.LstdFlags),
		submitted: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Execute runs the named tool with the given input and returns the result as
// a string for the tool_result block. Failures are rendered as "Error: ..."
// text so the model can react to them instead of the loop aborting.
func (e *Executor) Execute(ctx context.Context, name string, input map[string]any) string {
	out, err := e.dispatch(ctx, name, input)
	if err != nil {
		e.logger.Printf("tool %s failed: %v", name, err)
		return "Error: " + err.Error()
	}
	return out
}

func (e *Executor) dispatch(ctx context.Context, name string, input map[string]any) (string, error) {
	switch name {
	case "submit_query":
		return e.submitQuery(ctx, input)
	case "get_job_status":
		return e.getJobStatus(ctx, input)
	case "pull_results":
		return e.pullResults(ctx, input)
	case "continue_job":
		return e.continueJob(ctx, input)
	case "list_user_jobs":
		return e.listUserJobs(ctx)
	case "create_monitor":
		return e.createMonitor(ctx, input)
	case "list_monitors":
		return e.listMonitors(ctx)
	case "pull_monitor_results":
		return e.pullMonitorResults(ctx, input)
	case "enable_monitor":
		return e.enableMonitor(ctx, input)
	case "disable_monitor":
		return e.disableMonitor(ctx, input)
	case "update_monitor":
		return e.updateMonitor(ctx, input)
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func (e *Executor) submitQuery(ctx context.Context, input map[string]any) (string, error) {
	query := stringArg(input, "query")
	if query == "" {
		return "", errors.New("query is required")
	}
	req := catchall.SubmitRequest{
		Query:     query,
		Context:   stringArg(input, "context"),
		Schema:    stringArg(input, "schema"),
		StartDate: stringArg(input, "start_date"),
		EndDate:   stringArg(input, "end_date"),
	}
	if !boolArg(input, "fetch_all") {
		req.Limit = intArg(input, "limit")
		if req.Limit <= 0 {
			req.Limit = defaultSubmitLimit
		}
	}

	resp, err := e.client.Submit(ctx, req)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	e.submitted[resp.JobID] = e.now()
	e.mu.Unlock()
	return toJSON(resp), nil
}

func (e *Executor) getJobStatus(ctx context.Context, input map[string]any) (string, error) {
	jobID := stringArg(input, "job_id")
	if jobID == "" {
		return "", errors.New("job_id is required")
	}
	status, err := e.client.Status(ctx, jobID)
	if err != nil {
		return "", err
	}
	return toJSON(status), nil
}

func (e *Executor) pullResults(ctx context.Context, input map[string]any) (string, error) {
	jobID := stringArg(input, "job_id")
	if jobID == "" {
		return "", errors.New("job_id is required")
	}
	page := intArg(input, "page")
	pageSize := intArg(input, "page_size")

	// An already elapsed grace period means the first pull happens
	// immediately; WithInitialDelay bypasses the zero-value backfill.
	poller := catchall.NewPoller(e.client, e.policy).
		WithInitialDelay(e.remainingGrace(jobID))
	result, err := poller.Run(ctx, jobID, func(p catchall.Progress) {
		e.logger.Printf("job %s: %d record(s), status %q", jobID, p.Records, p.Status)
	})
	if errors.Is(err, catchall.ErrBudgetExhausted) && result != nil {
		// Surface what accumulated rather than failing the tool call.
		return toJSON(result), nil
	}
	if err != nil {
		return "", err
	}
	if page > 1 || (pageSize > 0 && pageSize != 100) {
		// The poll loop always observes page 1; a specific page request
		// re-pulls once completion is known.
		result, err = e.client.Pull(ctx, jobID, page, pageSize)
		if err != nil {
			return "", err
		}
	}
	return toJSON(result), nil
}

// remainingGrace returns how much of the grace period is still ahead for a
// job this executor submitted. Jobs submitted elsewhere get no grace wait.
func (e *Executor) remainingGrace(jobID string) time.Duration {
	e.mu.Lock()
	at, ok := e.submitted[jobID]
	e.mu.Unlock()
	if !ok {
		return 0
	}
	remaining := e.policy.InitialDelay - e.now().Sub(at)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (e *Executor) continueJob(ctx context.Context, input map[string]any) (string, error) {
	jobID := stringArg(input, "job_id")
	if jobID == "" {
		return "", errors.New("job_id is required")
	}
	if err := e.client.Continue(ctx, jobID, intArg(input, "new_limit")); err != nil {
		return "", err
	}
	e.mu.Lock()
	e.submitted[jobID] = e.now()
	e.mu.Unlock()
	return fmt.Sprintf("Job %s continued.", jobID), nil
}

func (e *Executor) listUserJobs(ctx context.Context) (string, error) {
	jobs, err := e.client.ListJobs(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(jobs), nil
}

func (e *Executor) createMonitor(ctx context.Context, input map[string]any) (string, error) {
	refJob := stringArg(input, "reference_job_id")
	schedule := stringArg(input, "schedule")
	if refJob == "" || schedule == "" {
		return "", errors.New("reference_job_id and schedule are required")
	}
	req := catchall.CreateMonitorRequest{
		ReferenceJobID: refJob,
		Schedule:       schedule,
		Webhook:        webhookArg(input),
	}
	monitor, err := e.client.CreateMonitor(ctx, req)
	if err != nil {
		return "", err
	}
	return toJSON(monitor), nil
}

func (e *Executor) listMonitors(ctx context.Context) (string, error) {
	monitors, err := e.client.ListMonitors(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(monitors), nil
}

func (e *Executor) pullMonitorResults(ctx context.Context, input map[string]any) (string, error) {
	id := stringArg(input, "monitor_id")
	if id == "" {
		return "", errors.New("monitor_id is required")
	}
	page, err := e.client.PullMonitor(ctx, id)
	if err != nil {
		return "", err
	}
	return toJSON(page), nil
}

func (e *Executor) enableMonitor(ctx context.Context, input map[string]any) (string, error) {
	id := stringArg(input, "monitor_id")
	if id == "" {
		return "", errors.New("monitor_id is required")
	}
	if err := e.client.EnableMonitor(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Monitor %s enabled.", id), nil
}

func (e *Executor) disableMonitor(ctx context.Context, input map[string]any) (string, error) {
	id := stringArg(input, "monitor_id")
	if id == "" {
		return "", errors.New("monitor_id is required")
	}
	if err := e.client.DisableMonitor(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Monitor %s disabled.", id), nil
}

func (e *Executor) updateMonitor(ctx context.Context, input map[string]any) (string, error) {
	id := stringArg(input, "monitor_id")
	webhook := webhookArg(input)
	if id == "" || webhook == nil {
		return "", errors.New("monitor_id and webhook are required")
	}
	monitor, err := e.client.UpdateMonitorWebhook(ctx, id, *webhook)
	if err != nil {
		return "", err
	}
	return toJSON(monitor), nil
}

// Argument accessors tolerate the loose typing of model-produced JSON.

func stringArg(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return strings.TrimSpace(s)
}

func intArg(input map[string]any, key string) int {
	switch v := input[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

func boolArg(input map[string]any, key string) bool {
	b, _ := input[key].(bool)
	return b
}

func webhookArg(input map[string]any) *catchall.WebhookConfig {
	raw, ok := input["webhook"].(map[string]any)
	if !ok {
		return nil
	}
	w := &catchall.WebhookConfig{
		URL:    stringArg(raw, "url"),
		Method: stringArg(raw, "method"),
	}
	if headers, ok := raw["headers"].(map[string]any); ok {
		w.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			if s, ok := v.(string); ok {
				w.Headers[k] = s
			}
		}
	}
	return w
}

func toJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(out)
}
