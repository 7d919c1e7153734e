// Package wordbank holds the immutable vocabulary catalog that automatic
// card generation draws from. The default catalog is the ISEE word list
// embedded in the binary; a custom list can be loaded from a YAML file
// with the same layout.
package wordbank

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/cardfactory/internal/card"
)

//go:embed words.yaml
var defaultWords []byte

// Entry is a single vocabulary entry of the bank
type Entry struct {
	Word       string        `yaml:"word"`
	Definition string        `yaml:"definition"`
	Example    string        `yaml:"example"`
	Category   card.Category `yaml:"-"`
}

// Bank is a read-only catalog of entries grouped by category
type Bank struct {
	entries map[card.Category][]Entry
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the embedded ISEE word bank
func Default() *Bank {
	defaultOnce.Do(func() {
		bank, err := Parse(defaultWords)
		if err != nil {
			panic(fmt.Sprintf("embedded word bank is invalid: %v", err))
		}
		defaultBank = bank
	})
	return defaultBank
}

// Load reads a word bank from a YAML file
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word bank: %w", err)
	}

	bank, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse word bank %s: %w", path, err)
	}
	return bank, nil
}

// Parse decodes a YAML document mapping category names (singular or plural)
// to lists of entries. Headwords must be unique across the whole bank,
// ignoring case.
func Parse(data []byte) (*Bank, error) {
	var raw map[string][]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	bank := &Bank{entries: make(map[card.Category][]Entry, len(card.AllCategories))}
	seen := make(map[string]card.Category)

	for key, list := range raw {
		category, err := card.ParseCategory(key)
		if err != nil {
			return nil, err
		}

		for i, entry := range list {
			entry.Word = strings.TrimSpace(entry.Word)
			entry.Definition = strings.TrimSpace(entry.Definition)
			entry.Example = strings.TrimSpace(entry.Example)
			entry.Category = category

			if entry.Word == "" || entry.Definition == "" {
				return nil, fmt.Errorf("%s entry %d: word and definition are required", category, i+1)
			}

			lower := strings.ToLower(entry.Word)
			if other, dup := seen[lower]; dup {
				return nil, fmt.Errorf("duplicate word %q in %s and %s", entry.Word, other, category)
			}
			seen[lower] = category

			bank.entries[category] = append(bank.entries[category], entry)
		}
	}

	return bank, nil
}

// Entries returns a copy of all entries of the given category
func (b *Bank) Entries(category card.Category) []Entry {
	list := b.entries[category]
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}

// Count returns the number of entries in the given category
func (b *Bank) Count(category card.Category) int {
	return len(b.entries[category])
}

// Size returns the total number of entries
func (b *Bank) Size() int {
	total := 0
	for _, list := range b.entries {
		total += len(list)
	}
	return total
}

// Lookup finds an entry by headword, ignoring case
func (b *Bank) Lookup(word string) (Entry, bool) {
	for _, category := range card.AllCategories {
		for _, entry := range b.entries[category] {
			if strings.EqualFold(entry.Word, word) {
				return entry, true
			}
		}
	}
	return Entry{}, false
}

// ToCard turns an entry into a card with the given ID and level
func (e Entry) ToCard(id string, level card.Level) card.Card {
	return card.Card{
		ID:         id,
		Word:       e.Word,
		Definition: e.Definition,
		Example:    e.Example,
		Category:   e.Category,
		Level:      level,
	}
}
