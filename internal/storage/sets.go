package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// SetsKey is the single key holding every saved set
const SetsKey = "flashcard-sets"

var (
	// ErrEmptyName is returned when saving a set without a name
	ErrEmptyName = errors.New("set name must not be empty")
	// ErrSetNotFound is returned when no saved set has the requested name
	ErrSetNotFound = errors.New("saved set not found")
)

// SavedSet is a named snapshot of a deck
type SavedSet struct {
	Name  string      `json:"name"`
	Cards []card.Card `json:"cards"`
}

// SetStore keeps the collection of saved sets
type SetStore struct {
	kv KV
}

// NewSetStore creates a set repository on top of kv
func NewSetStore(kv KV) *SetStore {
	return &SetStore{kv: kv}
}

// List returns all saved sets in the order they were saved
func (s *SetStore) List(ctx context.Context) ([]SavedSet, error) {
	data, err := s.kv.Get(ctx, SetsKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []SavedSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load saved sets: %w", err)
	}

	var sets []SavedSet
	if err := json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("failed to decode saved sets: %w", err)
	}
	if sets == nil {
		sets = []SavedSet{}
	}
	return sets, nil
}

// Save appends a snapshot of cards under name. Saving under an existing
// name adds another entry; nothing is overwritten.
func (s *SetStore) Save(ctx context.Context, name string, cards []card.Card) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	sets, err := s.List(ctx)
	if err != nil {
		return err
	}

	snapshot := make([]card.Card, len(cards))
	copy(snapshot, cards)
	sets = append(sets, SavedSet{Name: name, Cards: snapshot})

	return s.write(ctx, sets)
}

// Load returns the cards of the first set saved under name. Sets holding
// invalid cards are rejected with a DecodeError.
func (s *SetStore) Load(ctx context.Context, name string) ([]card.Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	sets, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, set := range sets {
		if set.Name == name {
			if err := checkCards(SetsKey, set.Cards); err != nil {
				return nil, fmt.Errorf("failed to load set %q: %w", name, err)
			}
			return set.Cards, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSetNotFound, name)
}

// Delete removes every set saved under name
func (s *SetStore) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	sets, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := sets[:0]
	for _, set := range sets {
		if set.Name != name {
			kept = append(kept, set)
		}
	}
	if len(kept) == len(sets) {
		return fmt.Errorf("%w: %q", ErrSetNotFound, name)
	}

	return s.write(ctx, kept)
}

// Words returns the headwords of all cards across all saved sets
func (s *SetStore) Words(ctx context.Context) ([]string, error) {
	sets, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var words []string
	for _, set := range sets {
		for _, c := range set.Cards {
			words = append(words, c.Word)
		}
	}
	return words, nil
}

// write serializes and stores the whole collection
func (s *SetStore) write(ctx context.Context, sets []SavedSet) error {
	data, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("failed to encode saved sets: %w", err)
	}
	return s.kv.Put(ctx, SetsKey, data)
}
