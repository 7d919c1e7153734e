package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// SessionKey holds the working deck between CLI invocations
const SessionKey = "flashcard-session"

// SessionStore persists the working deck of the active session
type SessionStore struct {
	kv KV
}

// NewSessionStore creates a session repository on top of kv
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Load returns the stored working deck or an empty deck when none exists
func (s *SessionStore) Load(ctx context.Context) ([]card.Card, error) {
	data, err := s.kv.Get(ctx, SessionKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []card.Card{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var cards []card.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if err := checkCards(SessionKey, cards); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if cards == nil {
		cards = []card.Card{}
	}
	return cards, nil
}

// Save replaces the stored working deck
func (s *SessionStore) Save(ctx context.Context, cards []card.Card) error {
	if cards == nil {
		cards = []card.Card{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.kv.Put(ctx, SessionKey, data)
}

// Clear discards the stored working deck
func (s *SessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, SessionKey)
}
