// Package agent implements the manual tool-calling loop over the CatchAll
// API: a statically declared tool registry, an executor that maps tool calls
// onto client operations, and the conversation loop itself.
package agent

import "github.com/newscatcherapi/catchall-go/provider"

// Toolset names a statically declared group of tools.
type Toolset string

const (
	ToolsetJobs     Toolset = "jobs"
	ToolsetMonitors Toolset = "monitors"
)

// Registry holds the tools offered to the model. Tool schemas are declared
// in code; a skill document selects toolsets explicitly rather than having
// schemas inferred from its prose.
type Registry struct {
	tools []provider.ToolDef
}

// NewRegistry builds a registry from the given toolsets. No toolsets means
// jobs only.
func NewRegistry(toolsets ...Toolset) *Registry {
	if len(toolsets) == 0 {
		toolsets = []Toolset{ToolsetJobs}
	}
	r := &Registry{}
	for _, ts := range toolsets {
		switch ts {
		case ToolsetJobs:
			r.tools = append(r.tools, jobTools()...)
		case ToolsetMonitors:
			r.tools = append(r.tools, monitorTools()...)
		}
	}
	return r
}

// Tools returns the declared tool definitions.
func (r *Registry) Tools() []provider.ToolDef { return r.tools }

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	for _, t := range r.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

func jobTools() []provider.ToolDef {
	return []provider.ToolDef{
		{
			Name: "submit_query",
			Description: "Submit a natural language query to search for news articles. " +
				"The system will fetch, validate, cluster, and summarize relevant articles. " +
				"Returns a job_id. Results stream in gradually after submission; " +
				"call pull_results to observe them. By default results are limited to 10; " +
				"set fetch_all=true only if the user explicitly asks for ALL results.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Natural language query (e.g., 'Find M&A deals in tech sector last 7 days')",
					},
					"context": map[string]any{
						"type":        "string",
						"description": "Additional context to guide extraction",
					},
					"schema": map[string]any{
						"type":        "string",
						"description": "Extraction schema describing the fields to pull out of each article",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default 10)",
					},
					"start_date": map[string]any{
						"type":        "string",
						"description": "Start date in ISO 8601 format",
					},
					"end_date": map[string]any{
						"type":        "string",
						"description": "End date in ISO 8601 format",
					},
					"fetch_all": map[string]any{
						"type":        "boolean",
						"description": "Set to true only if the user explicitly requests ALL results",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name: "get_job_status",
			Description: "Check the status of a submitted job. " +
				"Status progression: submitted -> analyzing -> fetching -> clustering -> enriching -> completed. " +
				"With streaming you rarely need to wait for 'completed'; use pull_results to get partial results.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"job_id": map[string]any{
						"type":        "string",
						"description": "The job ID returned from submit_query",
					},
				},
				"required": []string{"job_id"},
			},
		},
		{
			Name: "pull_results",
			Description: "Retrieve results for a job. Results appear gradually while processing " +
				"continues; this tool waits out the grace period after submission, then polls on a " +
				"fixed interval and returns the accumulated results, reporting partial progress " +
				"until the job completes or the attempt budget runs out.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"job_id": map[string]any{
						"type":        "string",
						"description": "The job ID returned from submit_query",
					},
					"page": map[string]any{
						"type":        "integer",
						"description": "Page number for pagination (default: 1)",
					},
					"page_size": map[string]any{
						"type":        "integer",
						"description": "Number of results per page (default: 100, max: 100)",
					},
				},
				"required": []string{"job_id"},
			},
		},
		{
			Name:        "continue_job",
			Description: "Continue processing a job that needs additional data fetching, optionally raising its result limit.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"job_id": map[string]any{
						"type":        "string",
						"description": "The job ID to continue processing",
					},
					"new_limit": map[string]any{
						"type":        "integer",
						"description": "New result limit for the continued job",
					},
				},
				"required": []string{"job_id"},
			},
		},
		{
			Name:        "list_user_jobs",
			Description: "List all jobs previously submitted. Returns job history with IDs, queries, statuses, and timestamps.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
	}
}

func monitorTools() []provider.ToolDef {
	return []provider.ToolDef{
		{
			Name:        "create_monitor",
			Description: "Create a recurring monitor from a finished job.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reference_job_id": map[string]any{
						"type":        "string",
						"description": "Job ID to monitor",
					},
					"schedule": map[string]any{
						"type":        "string",
						"description": "Schedule, either cron syntax or free text (e.g., 'every day at 9 AM EST')",
					},
					"webhook": map[string]any{
						"type":        "object",
						"description": "Optional webhook delivery configuration",
						"properties": map[string]any{
							"url":     map[string]any{"type": "string"},
							"method":  map[string]any{"type": "string"},
							"headers": map[string]any{"type": "object"},
						},
					},
				},
				"required": []string{"reference_job_id", "schedule"},
			},
		},
		{
			Name:        "list_monitors",
			Description: "List all monitors.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []string{},
			},
		},
		{
			Name:        "pull_monitor_results",
			Description: "Get the latest results of a monitor.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"monitor_id": map[string]any{
						"type":        "string",
						"description": "Monitor ID",
					},
				},
				"required": []string{"monitor_id"},
			},
		},
		{
			Name:        "enable_monitor",
			Description: "Enable a monitor.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"monitor_id": map[string]any{
						"type":        "string",
						"description": "Monitor ID",
					},
				},
				"required": []string{"monitor_id"},
			},
		},
		{
			Name:        "disable_monitor",
			Description: "Disable a monitor.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"monitor_id": map[string]any{
						"type":        "string",
						"description": "Monitor ID",
					},
				},
				"required": []string{"monitor_id"},
			},
		},
		{
			Name:        "update_monitor",
			Description: "Update a monitor's webhook delivery configuration.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"monitor_id": map[string]any{
						"type":        "string",
						"description": "Monitor ID",
					},
					"webhook": map[string]any{
						"type":        "object",
						"description": "New webhook configuration",
						"properties": map[string]any{
							"url":     map[string]any{"type": "string"},
							"method":  map[string]any{"type": "string"},
							"headers": map[string]any{"type": "object"},
						},
					},
				},
				"required": []string{"monitor_id", "webhook"},
			},
		},
	}
}
