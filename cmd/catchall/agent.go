package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/internal/agent"
	"github.com/newscatcherapi/catchall-go/internal/skill"
)

const defaultAgentSystem = "You are a news analyst. Use the CatchAll tools to answer " +
	"the user's question. Results stream in while a job runs, so pull results instead " +
	"of busy-waiting on status. Cite the source articles behind every claim."

func agentCMD() *cobra.Command {
	var skillDir string
	var maxTurns int
	cmd := &cobra.Command{
		Use:   "agent <prompt>",
		Short: "Run the tool-calling agent on a prompt",
		Long: "Runs an agentic loop: the model decides which CatchAll tools to call and " +
			"answers once it has what it needs. With --skill, the SKILL.md document supplies " +
			"the system prompt and selects the toolsets.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			llm, err := newToolCaller(cfg)
			if err != nil {
				return err
			}

			system := defaultAgentSystem
			toolsets := []agent.Toolset{agent.ToolsetJobs, agent.ToolsetMonitors}
			if skillDir != "" {
				sk, err := skill.LoadDir(skillDir)
				if err != nil {
					return err
				}
				system = sk.Body
				toolsets = toolsets[:0]
				for _, ts := range sk.Toolsets {
					toolsets = append(toolsets, agent.Toolset(ts))
				}
			}

			executor := agent.NewExecutor(client, pollPolicy(cfg))
			loop := agent.NewLoop(llm, agent.NewRegistry(toolsets...), executor, system).
				WithMaxTurns(maxTurns)
			loop.OnText = func(text string) {
				fmt.Println(text)
			}

			_, err = loop.Run(cmd.Context(), args[0])
			return err
		},
	}
	cmd.Flags().StringVar(&skillDir, "skill", "", "directory containing a SKILL.md to drive the agent")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 20, "maximum model turns")
	return cmd
}
