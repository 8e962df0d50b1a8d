// Package chat answers follow-up questions about saved reports, keeping the
// conversation in a session store so it survives across invocations when the
// store does.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/newscatcherapi/catchall-go/internal/report"
	"github.com/newscatcherapi/catchall-go/internal/session"
	"github.com/newscatcherapi/catchall-go/provider"
)

const chatSystem = `You answer questions about the news research reports you
are given. Ground every answer in the reports; say so when they do not cover
the question. Cite the report and its sources where possible.`

// Chat binds an LLM, a session store and a report store together.
type Chat struct {
	llm    provider.Completer
	store  session.Store
	report *report.Store
	logger *log.Logger
}

// New assembles a chat over the given stores.
func New(llm provider.Completer, store session.Store, reports *report.Store) *Chat {
	return &Chat{
		llm:    llm,
		store:  store,
		report: reports,
		logger: log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
}

// Ask answers one question within a session, folding the saved reports and
// the prior turns into the prompt.
func (c *Chat) Ask(ctx context.Context, sessionID, question string) (string, error) {
	reports, err := c.report.BuildChatContext()
	if err != nil {
		return "", fmt.Errorf("build report context: %w", err)
	}
	if reports == "" {
		return "", fmt.Errorf("no saved reports to chat about")
	}

	history, err := c.store.History(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	var b strings.Builder
	b.WriteString("Saved reports:\n\n")
	b.WriteString(reports)
	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)

	answer, err := c.llm.Generate(ctx, chatSystem, b.String())
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	now := time.Now()
	if err := c.store.Append(ctx, sessionID, session.Message{Role: "user", Content: question, At: now}); err != nil {
		return "", fmt.Errorf("store question: %w", err)
	}
	if err := c.store.Append(ctx, sessionID, session.Message{Role: "assistant", Content: answer, At: now}); err != nil {
		return "", fmt.Errorf("store answer: %w", err)
	}
	return answer, nil
}
