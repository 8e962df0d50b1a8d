package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/newscatcherapi/catchall-go/provider"
)

const defaultMaxTurns = 20

// Loop drives a tool-calling conversation: each model turn either ends the
// conversation with text or requests tool calls, whose results are appended
// as the next user turn.
type Loop struct {
	llm      provider.ToolCaller
	registry *Registry
	executor *Executor
	system   string
	maxTurns int
	logger   *log.Logger

	// OnText receives the model's intermediate and final text, when set.
	OnText func(text string)
}

// NewLoop assembles the agent from its parts. system is the system prompt;
// an empty prompt leaves the model undirected.
func NewLoop(llm provider.ToolCaller, registry *Registry, executor *Executor, system string) *Loop {
	return &Loop{
		llm:      llm,
		registry: registry,
		executor: executor,
		system:   system,
		maxTurns: defaultMaxTurns,
		logger:   log.New(log.Writer(), "[AGENT] ", log.LstdFlags),
	}
}

// WithMaxTurns caps the number of model turns per Run call.
func (l *Loop) WithMaxTurns(n int) *Loop {
	if n > 0 {
		l.maxTurns = n
	}
	return l
}

// Run executes the loop for a single user prompt and returns the model's
// final text answer.
func (l *Loop) Run(ctx context.Context, prompt string) (string, error) {
	messages := []provider.ChatMessage{provider.TextMessage("user", prompt)}

	for turn := 1; turn <= l.maxTurns; turn++ {
		resp, err := l.llm.Chat(ctx, l.system, messages, l.registry.Tools())
		if err != nil {
			return "", fmt.Errorf("model turn %d: %w", turn, err)
		}

		if text := resp.Text(); text != "" && l.OnText != nil {
			l.OnText(text)
		}
		if resp.StopReason != provider.StopToolUse {
			return resp.Text(), nil
		}

		// Echo the assistant turn, then answer every tool_use block in a
		// single user turn, preserving order.
		messages = append(messages, provider.ChatMessage{Role: "assistant", Content: resp.Content})
		var results []provider.ContentBlock
		for _, block := range resp.Content {
			if block.Type != provider.BlockToolUse {
				continue
			}
			l.logger.Printf("turn %d: tool %s", turn, block.Name)
			var out string
			if !l.registry.Has(block.Name) {
				out = fmt.Sprintf("Error: unknown tool %q", block.Name)
			} else {
				out = l.executor.Execute(ctx, block.Name, block.Input)
			}
			results = append(results, provider.ContentBlock{
				Type:      provider.BlockToolResult,
				ToolUseID: block.ID,
				Content:   out,
			})
		}
		messages = append(messages, provider.ChatMessage{Role: "user", Content: results})
	}

	return "", fmt.Errorf("agent did not finish within %d turns", l.maxTurns)
}
