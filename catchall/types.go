package catchall

import "fmt"

// Job statuses progress monotonically; transition timing is server-side and
// only observable through polling.
const (
	StatusSubmitted  = "submitted"
	StatusAnalyzing  = "analyzing"
	StatusFetching   = "fetching"
	StatusClustering = "clustering"
	StatusEnriching  = "enriching"
	StatusCompleted  = "completed"
)

// SubmitRequest describes a new search job.
type SubmitRequest struct {
	Query       string           `json:"query"`
	Context     string           `json:"context,omitempty"`
	Schema      string           `json:"schema,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	StartDate   string           `json:"start_date,omitempty"`
	EndDate     string           `json:"end_date,omitempty"`
	Validators  []map[string]any `json:"validators,omitempty"`
	Enrichments []map[string]any `json:"enrichments,omitempty"`
}

// SubmitResponse carries the opaque identifier of the created job.
type SubmitResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status,omitempty"`
}

// Step is one stage of a job's server-side pipeline.
type Step struct {
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

// JobStatus is the response of the status endpoint.
type JobStatus struct {
	JobID  string `json:"job_id,omitempty"`
	Status string `json:"status"`
	Steps  []Step `json:"steps"`
}

// Done reports whether the job has finished all its steps.
func (s JobStatus) Done() bool {
	if len(s.Steps) == 0 {
		return s.Status == StatusCompleted
	}
	all := true
	for _, st := range s.Steps {
		if st.Status == StatusCompleted && st.Completed {
			return true
		}
		if !st.Completed {
			all = false
		}
	}
	return all
}

// CurrentStep returns the first unfinished step, if any.
func (s JobStatus) CurrentStep() (Step, bool) {
	for _, st := range s.Steps {
		if !st.Completed {
			return st, true
		}
	}
	return Step{}, false
}

// Citation points at one source article backing a record or cluster.
type Citation struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Enrichment holds domain-specific extraction fields. The set of keys is
// owned by the server and varies with the submitted schema, so it stays an
// open map with typed accessors.
type Enrichment map[string]any

// String returns the value under key rendered as a string, or "" when absent.
func (e Enrichment) String(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Map returns the value under key as a nested object, if it is one.
func (e Enrichment) Map(key string) map[string]any {
	if m, ok := e[key].(map[string]any); ok {
		return m
	}
	return nil
}

// Record is a single validated result unit.
type Record struct {
	Title      string     `json:"record_title"`
	Enrichment Enrichment `json:"enrichment,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
}

// Cluster is a grouped result unit with its own summary.
type Cluster struct {
	Title      string     `json:"cluster_title"`
	Summary    string     `json:"cluster_summary,omitempty"`
	Enrichment Enrichment `json:"enrichment,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
}

// DateRange bounds the period a job searched over.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PullResponse is one page of job results. Pages are snapshots, not deltas:
// repeated pulls of the same job may return overlapping content as more is
// discovered server-side.
type PullResponse struct {
	JobID        string    `json:"job_id,omitempty"`
	Status       string    `json:"status"`
	Query        string    `json:"query,omitempty"`
	ValidRecords int       `json:"valid_records"`
	Records      []Record  `json:"all_records,omitempty"`
	Clusters     []Cluster `json:"clusters,omitempty"`
	DateRange    DateRange `json:"date_range,omitempty"`
	Page         int       `json:"page,omitempty"`
	PageSize     int       `json:"page_size,omitempty"`
}

// Count returns the number of result units on this page, preferring records
// over clusters when both are present.
func (p *PullResponse) Count() int {
	if p == nil {
		return 0
	}
	if len(p.Records) > 0 {
		return len(p.Records)
	}
	return len(p.Clusters)
}

// JobSummary is one entry of the user's job history.
type JobSummary struct {
	JobID     string `json:"job_id"`
	Query     string `json:"query"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

// WebhookConfig describes where a monitor delivers its results.
type WebhookConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Monitor is a named recurring job reference with schedule metadata.
type Monitor struct {
	MonitorID      string         `json:"monitor_id"`
	ReferenceJobID string         `json:"reference_job_id,omitempty"`
	Query          string         `json:"query,omitempty"`
	Schedule       string         `json:"schedule"`
	Enabled        bool           `json:"enabled"`
	Webhook        *WebhookConfig `json:"webhook,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
}

// CreateMonitorRequest creates a recurring monitor from a finished job.
type CreateMonitorRequest struct {
	ReferenceJobID string         `json:"reference_job_id"`
	Schedule       string         `json:"schedule"`
	Webhook        *WebhookConfig `json:"webhook,omitempty"`
}
