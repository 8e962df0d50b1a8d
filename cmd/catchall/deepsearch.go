package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/internal/chat"
	"github.com/newscatcherapi/catchall-go/internal/flow"
	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/internal/session"
)

func deepsearchCMD() *cobra.Command {
	var iterations int
	var chatAfter bool
	cmd := &cobra.Command{
		Use:   "deepsearch <prompt>",
		Short: "Run the deep search pipeline: plan, search, synthesize a report",
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
			llm, err := newCompleter(cfg)
			if err != nil {
				return err
			}
			reports := report.NewStore(cfg.Reports.Dir)

			runner := flow.NewRunner(llm,
				flow.ClientSearcher{Client: client, Policy: pollPolicy(cfg)},
				reports).WithMaxIterations(iterations)
			res, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(res.Report)
			if res.ReportPath != "" {
				fmt.Printf("\nReport saved to %s\n", res.ReportPath)
			}
			if !chatAfter {
				return nil
			}

			c := chat.New(llm, session.NewInMemory(), reports)
			sessionID := uuid.NewString()
			fmt.Println("\nAsk follow-up questions. Empty line to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					return nil
				}
				answer, err := c.Ask(cmd.Context(), sessionID, question)
				if err != nil {
					return err
				}
				fmt.Println(answer)
				fmt.Println()
			}
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 5, "maximum replan iterations")
	cmd.Flags().BoolVar(&chatAfter, "chat", false, "chat about the report after the run")
	return cmd
}
