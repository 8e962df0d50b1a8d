// Package provider abstracts the LLM backends behind the agent and the
// pipelines. Concrete implementations live in subpackages; selection happens
// where the application is wired together.
package provider

import (
	"context"
	"time"
)

// Client names the supported LLM providers.
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Completer generates a single completion for a prompt. It is all the
// planner, synthesizer and chat stages need.
type Completer interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ToolDef declares one tool offered to the model: a name, a description and
// a JSON-schema input object.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Content block types exchanged with a tool-calling model.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ContentBlock is one part of a chat message. Which fields are meaningful
// depends on Type.
type ContentBlock struct {
	Type string `json:"type"`

	// BlockText
	Text string `json:"text,omitempty"`

	// BlockToolUse
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// BlockToolResult
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ChatMessage is one turn of a tool-calling conversation.
type ChatMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextMessage builds a plain user or assistant turn.
func TextMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// Stop reasons reported by a tool-calling model.
const (
	StopToolUse = "tool_use"
	StopEndTurn = "end_turn"
)

// ChatResponse is the model's reply to one Chat call.
type ChatResponse struct {
	StopReason   string
	Content      []ContentBlock
	InputTokens  int64
	OutputTokens int64
}

// Text concatenates the text blocks of the response.
func (r ChatResponse) Text() string {
	var out string
	for _, b := range r.Content {
		if b.Type == BlockText {
			out += b.Text
		}
	}
	return out
}

// ToolCaller runs one turn of a tool-calling conversation.
type ToolCaller interface {
	Chat(ctx context.Context, system string, messages []ChatMessage, tools []ToolDef) (ChatResponse, error)
}

// Config parameterises a provider implementation.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}
