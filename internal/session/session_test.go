package session

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryAppendHistoryClear(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	msgs, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d", len(msgs))
	}

	now := time.Now()
	for _, m := range []Message{
		{Role: "user", Content: "what changed?", At: now},
		{Role: "assistant", Content: "two new deals", At: now},
	} {
		if err := store.Append(ctx, "s1", m); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := store.Append(ctx, "s2", Message{Role: "user", Content: "other session"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	msgs, err = store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Content != "two new deals" {
		t.Fatalf("unexpected history %+v", msgs)
	}

	// History returns a copy, not the backing slice.
	msgs[0].Content = "mutated"
	again, _ := store.History(ctx, "s1")
	if again[0].Content != "what changed?" {
		t.Fatal("History leaked the backing slice")
	}

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if msgs, _ := store.History(ctx, "s1"); len(msgs) != 0 {
		t.Fatal("Clear left messages behind")
	}
	if msgs, _ := store.History(ctx, "s2"); len(msgs) != 1 {
		t.Fatal("Clear touched the wrong session")
	}
}

func TestNewStoreSelection(t *testing.T) {
	store, err := NewStore(Config{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, ok := store.(*InMemory); !ok {
		t.Fatalf("expected in-memory default, got %T", store)
	}

	if _, err := NewStore(Config{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
