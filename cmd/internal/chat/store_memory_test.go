package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	msg, err := store.SaveMessage(context.Background(), SaveMessageInput{
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hello",
		Now:        now,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(msg.ID) != 26 {
		t.Fatalf("expected 26-char ulid, got %q", msg.ID)
	}
	if !msg.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, msg.CreatedAt)
	}
}

func TestInMemoryStore_RejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	_, err := store.SaveMessage(context.Background(), SaveMessageInput{
		SenderID:   "alice",
		ReceiverID: "bob",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestInMemoryStore_HistoryBetween_BothDirectionsOldestFirst(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	save := func(sender, receiver, text string, at time.Time) {
		t.Helper()
		if _, err := store.SaveMessage(ctx, SaveMessageInput{
			SenderID: sender, ReceiverID: receiver, Text: text, Now: at,
		}); err != nil {
			t.Fatalf("save %q: %v", text, err)
		}
	}

	save("alice", "bob", "first", base)
	save("bob", "alice", "second", base.Add(time.Minute))
	save("alice", "carol", "unrelated", base.Add(2*time.Minute))
	save("alice", "bob", "third", base.Add(3*time.Minute))

	msgs, err := store.HistoryBetween(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Text != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, msgs[i].Text)
		}
	}

	// Symmetric query returns the same conversation.
	rev, err := store.HistoryBetween(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("history reversed: %v", err)
	}
	if len(rev) != 3 {
		t.Fatalf("expected symmetric history, got %d messages", len(rev))
	}
}

func TestInMemoryStore_HistoryBetween_TiesBreakOnID(t *testing.T) {
	t.Parallel()

	store := NewInMemoryStore()
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, text := range []string{"a", "b", "c"} {
		if _, err := store.SaveMessage(ctx, SaveMessageInput{
			SenderID: "alice", ReceiverID: "bob", Text: text, Now: at,
		}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	msgs, err := store.HistoryBetween(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i-1].ID >= msgs[i].ID {
			t.Fatalf("expected ascending ids on equal timestamps")
		}
	}
}
