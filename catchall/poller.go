package catchall

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

// PollPolicy is a retry-with-fixed-backoff policy, independent of the
// transport: wait InitialDelay once after submission (the grace period, so
// the server has begun work before the first pull), then poll every Interval
// until completion or MaxAttempts is exhausted.
type PollPolicy struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
}

// DefaultPollPolicy matches the documented streaming convention: 30s grace,
// 60s interval, 15 attempts.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialDelay: 30 * time.Second,
		Interval:     60 * time.Second,
		MaxAttempts:  15,
	}
}

// Progress is one observation of a running job, surfaced to the caller so
// partial results are visible before completion.
type Progress struct {
	Attempt int
	Status  string
	Records int
	Page    *PullResponse
}

// Poller drives the polling loop over a Client. It is a two-state machine:
// polling until a terminal condition, then done. The only state it tracks is
// the attempt count and the latest observed page.
type Poller struct {
	client *Client
	policy PollPolicy
	logger *log.Logger

	// sleep is injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a Poller over client with the given policy. Zero policy
// fields fall back to the defaults.
func NewPoller(client *Client, policy PollPolicy) *Poller {
	def := DefaultPollPolicy()
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = def.InitialDelay
	}
	if policy.Interval <= 0 {
		policy.Interval = def.Interval
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	return &Poller{
		client: client,
		policy: policy,
		logger: log.New(log.Writer(), "[POLL] ", log.LstdFlags),
		sleep:  sleepCtx,
	}
}

// WithInitialDelay overrides the grace period after construction. Unlike the
// zero-value backfill in NewPoller, this accepts zero for callers that know
// the grace period has already elapsed.
func (p *Poller) WithInitialDelay(d time.Duration) *Poller {
	if d < 0 {
		d = 0
	}
	p.policy.InitialDelay = d
	return p
}

// Run polls jobID until it completes or the attempt budget runs out. Every
// attempt invokes onProgress (when non-nil) with the page pulled so far.
//
// Terminal conditions:
//   - completed status: the final page and a nil error, on the same
//     iteration the status is observed;
//   - budget exhausted: the last page and ErrBudgetExhausted;
//   - malformed response body: the last good page and the RequestError (a
//     persistently broken server reply must not spin the loop forever);
//   - transport or API errors propagate unchanged.
func (p *Poller) Run(ctx context.Context, jobID string, onProgress func(Progress)) (*PullResponse, error) {
	if err := p.sleep(ctx, p.policy.InitialDelay); err != nil {
		return nil, err
	}

	var last *PullResponse
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		page, err := p.client.Pull(ctx, jobID, 1, 100)
		if err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) && reqErr.StatusCode >= 200 && reqErr.StatusCode < 300 {
				// 2xx with an undecodable body: terminate rather than retry.
				p.logger.Printf("job %s: malformed poll response on attempt %d, stopping", jobID, attempt)
				return last, err
			}
			return last, err
		}
		last = page

		if onProgress != nil {
			onProgress(Progress{Attempt: attempt, Status: page.Status, Records: page.Count(), Page: page})
		}
		if Completed(page.Status) {
			p.logger.Printf("job %s completed after %d poll(s), %d record(s)", jobID, attempt, page.Count())
			return page, nil
		}
		p.logger.Printf("job %s: attempt %d/%d, status %q, %d record(s) so far",
			jobID, attempt, p.policy.MaxAttempts, page.Status, page.Count())

		if attempt < p.policy.MaxAttempts {
			if err := p.sleep(ctx, p.policy.Interval); err != nil {
				return last, err
			}
		}
	}
	return last, ErrBudgetExhausted
}

// WaitForCompletion polls the status endpoint instead of pulling pages,
// reporting each unfinished step via onStep. Used when the caller wants the
// complete result set in one pull at the end rather than a partial stream.
func (p *Poller) WaitForCompletion(ctx context.Context, jobID string, onStep func(Step)) error {
	if err := p.sleep(ctx, p.policy.InitialDelay); err != nil {
		return err
	}
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		status, err := p.client.Status(ctx, jobID)
		if err != nil {
			return err
		}
		if status.Done() {
			return nil
		}
		if step, ok := status.CurrentStep(); ok {
			if onStep != nil {
				onStep(step)
			}
			p.logger.Printf("job %s: step %d %q", jobID, step.Order, step.Status)
		}
		if attempt < p.policy.MaxAttempts {
			if err := p.sleep(ctx, p.policy.Interval); err != nil {
				return err
			}
		}
	}
	return ErrBudgetExhausted
}

// Completed reports whether a status string marks a finished job. The server
// decorates the status with progress text, so this is a substring match.
func Completed(status string) bool {
	return strings.Contains(strings.ToLower(status), StatusCompleted)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
