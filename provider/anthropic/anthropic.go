// Package anthropic_provider implements the provider interfaces against the
// Anthropic Messages API, including tool use for the agentic loop.
package anthropic_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newscatcherapi/catchall-go/provider"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

type client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// New creates an Anthropic client. Zero config fields fall back to sensible
// defaults; the API key is required.
func New(cfg provider.Config) (*client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key not configured")
	}
	c := &client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens == 0 {
		c.maxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		c.httpClient.Timeout = 120 * time.Second
	}
	return c, nil
}

type messagesRequest struct {
	Model     string                 `json:"model"`
	MaxTokens int                    `json:"max_tokens"`
	System    string                 `json:"system,omitempty"`
	Messages  []provider.ChatMessage `json:"messages"`
	Tools     []provider.ToolDef     `json:"tools,omitempty"`
}

type messagesResponse struct {
	StopReason string                  `json:"stop_reason"`
	Content    []provider.ContentBlock `json:"content"`
	Usage      struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat runs one turn of a tool-calling conversation.
func (c *client) Chat(ctx context.Context, system string, messages []provider.ChatMessage, tools []provider.ToolDef) (provider.ChatResponse, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  messages,
		Tools:     tools,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return provider.ChatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return provider.ChatResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.ChatResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return provider.ChatResponse{}, fmt.Errorf("read response: %w", err)
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return provider.ChatResponse{}, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return provider.ChatResponse{}, fmt.Errorf("anthropic status %d: %s", resp.StatusCode, msg)
	}

	return provider.ChatResponse{
		StopReason:   out.StopReason,
		Content:      out.Content,
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
	}, nil
}

// Generate satisfies the Completer interface with a single-turn message.
func (c *client) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.Chat(ctx, system, []provider.ChatMessage{provider.TextMessage("user", prompt)}, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
