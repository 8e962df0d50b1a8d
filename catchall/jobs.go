package catchall

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Submit creates a new search job and returns its identifier. Results stream
// in gradually afterwards; pair this with a Poller to observe them.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.doJSON(ctx, "POST", "/catchAll/submit", nil, req, &resp); err != nil {
		return SubmitResponse{}, err
	}
	c.logger.Printf("submitted job %s: %q", resp.JobID, req.Query)
	return resp, nil
}

// Status fetches the current pipeline state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (JobStatus, error) {
	var resp JobStatus
	if err := c.doJSON(ctx, "GET", "/catchAll/status/"+url.PathEscape(jobID), nil, nil, &resp); err != nil {
		return JobStatus{}, err
	}
	return resp, nil
}

// Pull fetches one page of results. Page numbering starts at 1; pageSize is
// capped at 100 by the server. Zero values fall back to the defaults.
func (c *Client) Pull(ctx context.Context, jobID string, page, pageSize int) (*PullResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var resp PullResponse
	if err := c.doJSON(ctx, "GET", "/catchAll/pull/"+url.PathEscape(jobID), q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.JobID == "" {
		resp.JobID = jobID
	}
	return &resp, nil
}

// Continue resumes a job that needs additional data fetching, optionally
// raising its result limit. newLimit <= 0 keeps the current limit.
func (c *Client) Continue(ctx context.Context, jobID string, newLimit int) error {
	body := map[string]any{"job_id": jobID}
	if newLimit > 0 {
		body["new_limit"] = newLimit
	}
	if err := c.doJSON(ctx, "POST", "/catchAll/continue", nil, body, nil); err != nil {
		return err
	}
	c.logger.Printf("continued job %s (new_limit=%d)", jobID, newLimit)
	return nil
}

// ListJobs returns the caller's job history.
func (c *Client) ListJobs(ctx context.Context) ([]JobSummary, error) {
	var jobs []JobSummary
	if err := c.doJSON(ctx, "GET", "/catchAll/jobs/user", nil, nil, &jobs); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
