package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/internal/risk"
)

func riskCMD() *cobra.Command {
	var monitorID, jobID string
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Run the supply chain risk pipeline",
		Long: "Pulls news intelligence from a monitor, an existing job, or a fresh default " +
			"search, then runs the three analysis stages and saves an executive report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if monitorID != "" && jobID != "" {
				return fmt.Errorf("--monitor and --job are mutually exclusive")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			llm, err := newCompleter(cfg)
			if err != nil {
				return err
			}

			src := risk.Source{Kind: risk.SourceNew}
			switch {
			case monitorID != "":
				src = risk.Source{Kind: risk.SourceMonitor, ID: monitorID}
			case jobID != "":
				src = risk.Source{Kind: risk.SourceJob, ID: jobID}
			}

			pipe := risk.NewPipeline(client, pollPolicy(cfg), llm, report.NewStore(cfg.Reports.Dir))
			res, err := pipe.Run(cmd.Context(), src)
			if err != nil {
				return err
			}

			fmt.Println(res.Report)
			if res.ReportPath != "" {
				fmt.Printf("\nReport saved to %s\n", res.ReportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&monitorID, "monitor", "", "pull intelligence from this monitor")
	cmd.Flags().StringVar(&jobID, "job", "", "pull intelligence from this existing job")
	return cmd
}
