// Package chat persists direct messages and exposes the messaging HTTP
// surface: sidebar listing, conversation history, and send.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel kinds for message store failures.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Message is one persisted direct message. Either Text or ImageURL may
// be empty, never both.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SaveMessageInput carries a validated message into the store.
type SaveMessageInput struct {
	SenderID   string
	ReceiverID string
	Text       string
	ImageURL   string
	Now        time.Time
}

func (in SaveMessageInput) validate() error {
	if in.SenderID == "" || in.ReceiverID == "" {
		return fmt.Errorf("%w: sender and receiver are required", ErrInvalidInput)
	}
	if in.Text == "" && in.ImageURL == "" {
		return fmt.Errorf("%w: message needs text or an image", ErrInvalidInput)
	}
	return nil
}

// Store is the message persistence boundary.
type Store interface {
	// SaveMessage assigns an id and timestamp and persists the record.
	SaveMessage(ctx context.Context, in SaveMessageInput) (Message, error)

	// HistoryBetween returns every message exchanged between the two
	// users, both directions, oldest first.
	HistoryBetween(ctx context.Context, userA, userB string) ([]Message, error)
}
