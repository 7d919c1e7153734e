// Package card defines the flashcard record shared by every other package:
// its category and level labels, partial updates and validation rules.
package card

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the grammatical category of a card
type Category string

// Known categories. The order of AllCategories is the canonical order used
// whenever categories are iterated.
const (
	Noun      Category = "noun"
	Adjective Category = "adjective"
	Verb      Category = "verb"
	Adverb    Category = "adverb"
)

// AllCategories lists every known category in canonical order
var AllCategories = []Category{Noun, Adjective, Verb, Adverb}

// Level is a free-form difficulty label. It has no behavioral effect.
type Level string

// Levels offered by the manual entry screens. Any other label is allowed.
const (
	LevelEasy     Level = "easy"
	LevelMedium   Level = "medium"
	LevelHard     Level = "hard"
	LevelVeryHard Level = "very hard"
	LevelISEE     Level = "ISEE"
)

// ManualLevels are the levels offered when entering cards by hand
var ManualLevels = []Level{LevelEasy, LevelMedium, LevelHard, LevelVeryHard}

var (
	// ErrUnknownCategory is returned when a category label is not one of the four known tags
	ErrUnknownCategory = errors.New("unknown category")
	// ErrEmptyWord is returned for a card without a headword
	ErrEmptyWord = errors.New("word must not be empty")
	// ErrEmptyDefinition is returned for a card without a definition
	ErrEmptyDefinition = errors.New("definition must not be empty")
)

// Card is a single vocabulary flashcard
type Card struct {
	ID         string   `json:"id" yaml:"id"`
	Word       string   `json:"word" yaml:"word"`
	Definition string   `json:"definition" yaml:"definition"`
	Example    string   `json:"example" yaml:"example"`
	Category   Category `json:"partOfSpeech" yaml:"category"`
	Level      Level    `json:"difficulty" yaml:"level"`
}

// Patch holds the fields to change on an existing card. Nil fields are left alone.
type Patch struct {
	Word       *string
	Definition *string
	Example    *string
	Category   *Category
	Level      *Level
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Plural returns the plural label used in headings and word bank files
func (c Category) Plural() string {
	return string(c) + "s"
}

// ParseCategory converts user input such as "Noun" or "verbs" to a Category
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, known := range AllCategories {
		if normalized == string(known) || normalized == known.Plural() {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Validate checks that the card can be kept in a deck and exported
func (c Card) Validate() error {
	if strings.TrimSpace(c.Word) == "" {
		return ErrEmptyWord
	}
	if strings.TrimSpace(c.Definition) == "" {
		return ErrEmptyDefinition
	}
	if !c.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c.Category)
	}
	return nil
}

// Apply returns a copy of c with the patch fields applied. The ID never changes.
func (c Card) Apply(p Patch) Card {
	if p.Word != nil {
		c.Word = *p.Word
	}
	if p.Definition != nil {
		c.Definition = *p.Definition
	}
	if p.Example != nil {
		c.Example = *p.Example
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	return c
}

// IsEmpty reports whether the patch would change nothing
func (p Patch) IsEmpty() bool {
	return p.Word == nil && p.Definition == nil && p.Example == nil &&
		p.Category == nil && p.Level == nil
}

// CountByCategory returns how many cards fall into each category
func CountByCategory(cards []Card) map[Category]int {
	counts := make(map[Category]int, len(AllCategories))
	for _, c := range cards {
		counts[c.Category]++
	}
	return counts
}
