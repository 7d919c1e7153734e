// Package sampler draws random, duplicate-free sets of cards from a word
// bank for automatic deck generation.
package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"codeberg.org/snonux/cardfactory/internal"
	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/wordbank"
)

// MaxPerCategory is the largest count the UI offers for a single category
const MaxPerCategory = 10

var (
	// ErrEmptySelection is returned when nothing was requested or nothing could be drawn
	ErrEmptySelection = errors.New("no cards selected")
	// ErrInsufficientWords is matched by InsufficientWordsError
	ErrInsufficientWords = errors.New("not enough words available")
	// ErrInvalidCount is returned for negative per-category counts
	ErrInvalidCount = errors.New("invalid word count")
)

// InsufficientWordsError reports a category whose eligible pool was smaller
// than the requested count
type InsufficientWordsError struct {
	Category  card.Category
	Requested int
	Available int
}

func (e *InsufficientWordsError) Error() string {
	return fmt.Sprintf("not enough %s words: requested %d, only %d available",
		e.Category, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientWords) match
func (e *InsufficientWordsError) Is(target error) bool {
	return target == ErrInsufficientWords
}

// Request describes what to draw
type Request struct {
	// Counts is the number of words wanted per category
	Counts map[card.Category]int
	// Exclude holds headwords to skip when AvoidDuplicates is set.
	// Matching is exact and case-sensitive.
	Exclude []string
	// AvoidDuplicates enables the Exclude filter
	AvoidDuplicates bool
	// AcceptFewer lets a short category degrade to its whole pool instead of failing
	AcceptFewer bool
	// Level is assigned to every drawn card (ISEE when empty)
	Level card.Level
}

// Shortfall records a category that could not be filled completely
type Shortfall struct {
	Category  card.Category
	Requested int
	Available int
}

// Result is the outcome of a successful Sample call
type Result struct {
	Cards      []card.Card
	Shortfalls []Shortfall
}

// Total returns the sum of all requested counts
func (r Request) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// RecommendedCounts returns the suggested mix of 3 nouns, 3 adjectives,
// 2 verbs and 2 adverbs
func RecommendedCounts() map[card.Category]int {
	return map[card.Category]int{
		card.Noun:      3,
		card.Adjective: 3,
		card.Verb:      2,
		card.Adverb:    2,
	}
}

// Option configures a Sampler
type Option func(*Sampler)

// WithRand sets the random source used for drawing and shuffling
func WithRand(r *rand.Rand) Option {
	return func(s *Sampler) {
		s.rng = r
	}
}

// WithIDFunc sets the generator for new card IDs
func WithIDFunc(f func() string) Option {
	return func(s *Sampler) {
		s.newID = f
	}
}

// Sampler draws cards from a word bank
type Sampler struct {
	bank  *wordbank.Bank
	rng   *rand.Rand
	newID func() string
}

// New creates a sampler over the given bank
func New(bank *wordbank.Bank, opts ...Option) *Sampler {
	s := &Sampler{
		bank:  bank,
		newID: internal.GenerateCardID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>7|1))
	}
	return s
}

// Sample draws the requested number of words per category, assigns each
// a fresh ID and returns them in shuffled order
func (s *Sampler) Sample(req Request) (Result, error) {
	for category, n := range req.Counts {
		if n < 0 {
			return Result{}, fmt.Errorf("%w: %s count %d", ErrInvalidCount, category, n)
		}
	}
	if req.Total() == 0 {
		return Result{}, ErrEmptySelection
	}

	level := req.Level
	if level == "" {
		level = card.LevelISEE
	}

	excluded := make(map[string]bool, len(req.Exclude))
	if req.AvoidDuplicates {
		for _, w := range req.Exclude {
			excluded[w] = true
		}
	}

	var result Result
	for _, category := range card.AllCategories {
		want := req.Counts[category]
		if want == 0 {
			continue
		}

		pool := s.eligible(category, excluded)
		if len(pool) < want {
			if !req.AcceptFewer {
				return Result{}, &InsufficientWordsError{
					Category:  category,
					Requested: want,
					Available: len(pool),
				}
			}
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				Category:  category,
				Requested: want,
				Available: len(pool),
			})
			want = len(pool)
		}

		for _, entry := range s.draw(pool, want) {
			result.Cards = append(result.Cards, entry.ToCard(s.newID(), level))
		}
	}

	if len(result.Cards) == 0 {
		return Result{}, ErrEmptySelection
	}

	// Hide the category grouping from the final order
	s.rng.Shuffle(len(result.Cards), func(i, j int) {
		result.Cards[i], result.Cards[j] = result.Cards[j], result.Cards[i]
	})

	return result, nil
}

// eligible returns the category entries whose headword is not excluded
func (s *Sampler) eligible(category card.Category, excluded map[string]bool) []wordbank.Entry {
	entries := s.bank.Entries(category)
	if len(excluded) == 0 {
		return entries
	}

	pool := entries[:0]
	for _, entry := range entries {
		if !excluded[entry.Word] {
			pool = append(pool, entry)
		}
	}
	return pool
}

// draw picks n entries uniformly at random without replacement.
// pool is reordered in place.
func (s *Sampler) draw(pool []wordbank.Entry, n int) []wordbank.Entry {
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n]
}
