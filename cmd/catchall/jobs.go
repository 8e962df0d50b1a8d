package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/catchall"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func submitCMD() *cobra.Command {
	var req catchall.SubmitRequest
	cmd := &cobra.Command{
		Use:   "submit <query>",
		Short: "Submit a new search job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			req.Query = args[0]
			resp, err := client.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&req.Context, "context", "", "context to guide extraction")
	cmd.Flags().StringVar(&req.Schema, "schema", "", "extraction schema")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum number of results")
	cmd.Flags().StringVar(&req.StartDate, "start-date", "", "start date (ISO 8601)")
	cmd.Flags().StringVar(&req.EndDate, "end-date", "", "end date (ISO 8601)")
	return cmd
}

func statusCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(status)
		},
	}
}

func pullCMD() *cobra.Command {
	var page, pageSize int
	var follow bool
	cmd := &cobra.Command{
		Use:   "pull <job-id>",
		Short: "Pull job results, optionally following until completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			jobID := args[0]

			if !follow {
				result, err := client.Pull(cmd.Context(), jobID, page, pageSize)
				if err != nil {
					return err
				}
				return printJSON(result)
			}

			poller := catchall.NewPoller(client, pollPolicy(cfg))
			result, err := poller.Run(cmd.Context(), jobID, func(p catchall.Progress) {
				fmt.Fprintf(os.Stderr, "attempt %d: status %q, %d record(s)\n", p.Attempt, p.Status, p.Records)
			})
			if err != nil {
				// Partial results still print before the error surfaces.
				if result != nil {
					_ = printJSON(result)
				}
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 100, "results per page")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "poll until the job completes")
	return cmd
}

func continueCMD() *cobra.Command {
	var newLimit int
	cmd := &cobra.Command{
		Use:   "continue <job-id>",
		Short: "Continue a finished job, optionally with a higher limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			if err := client.Continue(cmd.Context(), args[0], newLimit); err != nil {
				return err
			}
			fmt.Printf("Job %s continued.\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&newLimit, "new-limit", 0, "new result limit")
	return cmd
}

func jobsCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List your submitted jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			jobs, err := client.ListJobs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(jobs)
		},
	}
}
