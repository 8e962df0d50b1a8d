// Command catchall is the CLI for the Newscatcher CatchAll toolkit: job and
// monitor management, the tool-calling agent, deep search, the risk pipeline
// and the webhook receiver.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/newscatcherapi/catchall-go/catchall"
	"github.com/newscatcherapi/catchall-go/config"
	"github.com/newscatcherapi/catchall-go/provider"
	anthropic "github.com/newscatcherapi/catchall-go/provider/anthropic"
	openai "github.com/newscatcherapi/catchall-go/provider/openai"
)

func main() {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "catchall",
		Short:         "Search, track and analyze news with the CatchAll API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		submitCMD(), statusCMD(), pullCMD(), continueCMD(), jobsCMD(),
		monitorsCMD(),
		agentCMD(),
		deepsearchCMD(),
		riskCMD(),
		chatCMD(),
		webhookCMD(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func newClient(cfg *config.Config) (*catchall.Client, error) {
	var opts []catchall.Option
	if cfg.CatchAll.BaseURL != "" {
		opts = append(opts, catchall.WithBaseURL(cfg.CatchAll.BaseURL))
	}
	return catchall.New(cfg.CatchAll.APIKey, opts...)
}

func pollPolicy(cfg *config.Config) catchall.PollPolicy {
	return catchall.PollPolicy{
		InitialDelay: cfg.CatchAll.Poll.InitialDelay,
		Interval:     cfg.CatchAll.Poll.Interval,
		MaxAttempts:  cfg.CatchAll.Poll.MaxAttempts,
	}
}

func providerConfig(cfg *config.Config) provider.Config {
	return provider.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}
}

// newCompleter builds the configured single-shot LLM backend.
func newCompleter(cfg *config.Config) (provider.Completer, error) {
	switch provider.Client(cfg.LLM.Provider) {
	case provider.Anthropic, "":
		c, err := anthropic.New(providerConfig(cfg))
		if err != nil {
			return nil, err
		}
		return c, nil
	case provider.OpenAI:
		c, err := openai.New(providerConfig(cfg))
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// newToolCaller builds the tool-calling LLM backend. Only Anthropic speaks
// the tool_use protocol the agent loop drives.
func newToolCaller(cfg *config.Config) (provider.ToolCaller, error) {
	switch provider.Client(cfg.LLM.Provider) {
	case provider.Anthropic, "":
		c, err := anthropic.New(providerConfig(cfg))
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("provider %q does not support the tool-calling agent, use anthropic", cfg.LLM.Provider)
	}
}
