package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"nexus/cmd/identity/ids"
)

// InMemoryStore keeps messages in process memory. Used when no
// database is configured and as the fixture for handler tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

// NewInMemoryStore builds an empty in-memory message store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) SaveMessage(_ context.Context, in SaveMessageInput) (Message, error) {
	if err := in.validate(); err != nil {
		return Message{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ids.NewULID(now)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:         id,
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Text:       in.Text,
		ImageURL:   in.ImageURL,
		CreatedAt:  now.UTC(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	return msg, nil
}

func (s *InMemoryStore) HistoryBetween(_ context.Context, userA, userB string) ([]Message, error) {
	if userA == "" || userB == "" {
		return nil, ErrInvalidInput
	}

	s.mu.RLock()
	out := make([]Message, 0, 16)
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	// ULIDs break ties between same-timestamp rows.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
