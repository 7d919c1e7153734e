// Package deck holds the working set of cards of the active session and
// the edit operations the preview screens perform on it.
package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"codeberg.org/snonux/cardfactory/internal"
	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/wordbank"
)

var (
	// ErrNotFound is returned when no card has the requested ID
	ErrNotFound = errors.New("card not found")
	// ErrDuplicateID is returned when appending a card whose ID is already in the deck
	ErrDuplicateID = errors.New("duplicate card id")
	// ErrNoAvailableWords is matched by NoAvailableWordsError
	ErrNoAvailableWords = errors.New("no available words")
)

// NoAvailableWordsError is returned by Regenerate when every bank word of
// the card's category is already in the deck
type NoAvailableWordsError struct {
	Category card.Category
}

func (e *NoAvailableWordsError) Error() string {
	return fmt.Sprintf("no more %s words available in the word bank", e.Category)
}

// Is makes errors.Is(err, ErrNoAvailableWords) match
func (e *NoAvailableWordsError) Is(target error) bool {
	return target == ErrNoAvailableWords
}

// Deck is an ordered list of cards. It is not safe for concurrent use.
type Deck struct {
	cards []card.Card
	newID func() string
}

// New creates a deck holding a copy of the given cards
func New(cards ...card.Card) *Deck {
	d := &Deck{newID: internal.GenerateCardID}
	d.ReplaceAll(cards)
	return d
}

// SetIDFunc replaces the generator used for cards appended without an ID
func (d *Deck) SetIDFunc(f func() string) {
	d.newID = f
}

// Len returns the number of cards
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the cards in order
func (d *Deck) Cards() []card.Card {
	out := make([]card.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Get returns the card with the given ID
func (d *Deck) Get(id string) (card.Card, error) {
	i := d.index(id)
	if i < 0 {
		return card.Card{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d.cards[i], nil
}

// Words returns the headwords of all cards in order
func (d *Deck) Words() []string {
	words := make([]string, len(d.cards))
	for i, c := range d.cards {
		words[i] = c.Word
	}
	return words
}

// Append validates c and adds it to the end of the deck. A card without
// an ID gets a fresh one. The stored card is returned.
func (d *Deck) Append(c card.Card) (card.Card, error) {
	if err := c.Validate(); err != nil {
		return card.Card{}, err
	}
	if c.ID == "" {
		c.ID = d.newID()
	} else if d.index(c.ID) >= 0 {
		return card.Card{}, fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}

	d.cards = append(d.cards, c)
	return c, nil
}

// Update applies p to the card with the given ID. The stored card is
// only replaced when the patched card is valid.
func (d *Deck) Update(id string, p card.Patch) (card.Card, error) {
	i := d.index(id)
	if i < 0 {
		return card.Card{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := d.cards[i].Apply(p)
	if err := updated.Validate(); err != nil {
		return card.Card{}, err
	}

	d.cards[i] = updated
	return updated, nil
}

// Remove deletes the card with the given ID. Removing a missing ID is a no-op.
func (d *Deck) Remove(id string) {
	i := d.index(id)
	if i < 0 {
		return
	}
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
}

// ReplaceAll swaps the whole content of the deck for a copy of cards
func (d *Deck) ReplaceAll(cards []card.Card) {
	d.cards = make([]card.Card, len(cards))
	copy(d.cards, cards)
}

// Regenerate replaces the card with the given ID by a random bank word of
// the same category that is not yet in the deck. Words are compared
// ignoring case. The card keeps its ID and its level becomes ISEE.
func (d *Deck) Regenerate(id string, bank *wordbank.Bank, r *rand.Rand) (card.Card, error) {
	i := d.index(id)
	if i < 0 {
		return card.Card{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	current := d.cards[i]

	present := make(map[string]bool, len(d.cards))
	for _, c := range d.cards {
		present[strings.ToLower(c.Word)] = true
	}

	var available []wordbank.Entry
	for _, entry := range bank.Entries(current.Category) {
		if !present[strings.ToLower(entry.Word)] {
			available = append(available, entry)
		}
	}
	if len(available) == 0 {
		return card.Card{}, &NoAvailableWordsError{Category: current.Category}
	}

	picked := available[r.IntN(len(available))]
	d.cards[i] = picked.ToCard(current.ID, card.LevelISEE)
	return d.cards[i], nil
}

// index returns the position of the card with the given ID or -1
func (d *Deck) index(id string) int {
	for i, c := range d.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
