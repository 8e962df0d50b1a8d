package catchall

import (
	"context"
	"net/url"
	"time"

	"github.com/gorhill/cronexpr"
)

// CreateMonitor turns a finished job into a recurring monitor. Schedules may
// be cron expressions or free text ("every day at 9 AM EST"); cron syntax is
// validated locally, free text is left to the server to interpret.
func (c *Client) CreateMonitor(ctx context.Context, req CreateMonitorRequest) (Monitor, error) {
	if next, ok := NextRun(req.Schedule, time.Now()); ok {
		c.logger.Printf("monitor schedule %q next fires at %s", req.Schedule, next.Format(time.RFC3339))
	}
	var m Monitor
	if err := c.doJSON(ctx, "POST", "/catchAll/monitors/create", nil, req, &m); err != nil {
		return Monitor{}, err
	}
	return m, nil
}

// ListMonitors returns all monitors owned by the caller.
func (c *Client) ListMonitors(ctx context.Context) ([]Monitor, error) {
	var monitors []Monitor
	if err := c.doJSON(ctx, "GET", "/catchAll/monitors/", nil, nil, &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}

// PullMonitor fetches the latest results of a monitor, normalised to the job
// result shape so downstream consumers handle both uniformly.
func (c *Client) PullMonitor(ctx context.Context, monitorID string) (*PullResponse, error) {
	var raw struct {
		PullResponse
		MonitorID string `json:"monitor_id"`
	}
	if err := c.doJSON(ctx, "GET", "/catchAll/monitors/pull/"+url.PathEscape(monitorID), nil, nil, &raw); err != nil {
		return nil, err
	}
	resp := raw.PullResponse
	if resp.JobID == "" {
		resp.JobID = raw.MonitorID
	}
	if resp.JobID == "" {
		resp.JobID = monitorID
	}
	if resp.Status == "" {
		resp.Status = StatusCompleted
	}
	if resp.ValidRecords == 0 {
		resp.ValidRecords = resp.Count()
	}
	return &resp, nil
}

// EnableMonitor resumes a paused monitor.
func (c *Client) EnableMonitor(ctx context.Context, monitorID string) error {
	return c.doJSON(ctx, "POST", "/catchAll/monitors/"+url.PathEscape(monitorID)+"/enable", nil, nil, nil)
}

// DisableMonitor pauses a monitor without deleting it.
func (c *Client) DisableMonitor(ctx context.Context, monitorID string) error {
	return c.doJSON(ctx, "POST", "/catchAll/monitors/"+url.PathEscape(monitorID)+"/disable", nil, nil, nil)
}

// UpdateMonitorWebhook replaces a monitor's webhook delivery configuration.
func (c *Client) UpdateMonitorWebhook(ctx context.Context, monitorID string, webhook WebhookConfig) (Monitor, error) {
	var m Monitor
	body := map[string]any{"webhook": webhook}
	if err := c.doJSON(ctx, "PATCH", "/catchAll/monitors/"+url.PathEscape(monitorID), nil, body, &m); err != nil {
		return Monitor{}, err
	}
	return m, nil
}

// NextRun computes the next firing time of a cron-style schedule after the
// given instant. The second return is false for schedules that are not valid
// cron expressions (free-text schedules are parsed server-side).
func NextRun(schedule string, after time.Time) (time.Time, bool) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return time.Time{}, false
	}
	next := expr.Next(after)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}
