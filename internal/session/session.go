// Package session stores follow-up chat history. Two backends: an in-memory
// map for single-process CLI use and Redis for anything longer lived.
package session

import (
	"context"
	"fmt"
	"time"
)

// Message is one chat turn.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store persists chat history per session.
type Store interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	History(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

// Config selects and parameterises a backend.
type Config struct {
	Backend  string // inmemory, redis
	TTL      time.Duration
	Addr     string
	Password string
	DB       int
}

// NewStore builds the configured backend.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "inmemory":
		return NewInMemory(), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
