package testutil

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/wordbank"
)

// smallBankYAML is a tiny word bank with a known shape: 4 nouns, 3 adjectives,
// 2 verbs and 1 adverb
const smallBankYAML = `
noun:
  - word: accomplice
    definition: A person who helps another commit a crime
    example: The police arrested the thief and his accomplice.
  - word: acumen
    definition: The ability to make good judgments
  - word: altruism
    definition: Unselfish regard for the welfare of others
  - word: Aspiration
    definition: A hope or ambition of achieving something
adjective:
  - word: arbitrary
    definition: Based on random choice or personal whim
  - word: candid
    definition: Truthful and straightforward
  - word: diligent
    definition: Having or showing care in one's work
verb:
  - word: abate
    definition: To become less intense
  - word: bolster
    definition: To support or strengthen
adverb:
  - word: briskly
    definition: In an active, quick, or energetic way
`

// SmallBank returns a parsed word bank with few entries per category
func SmallBank(t *testing.T) *wordbank.Bank {
	t.Helper()

	bank, err := wordbank.Parse([]byte(smallBankYAML))
	if err != nil {
		t.Fatalf("Failed to parse test word bank: %v", err)
	}
	return bank
}

// SeededRand returns a deterministic random source
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// SequentialIDs returns an ID generator yielding id-1, id-2, ...
func SequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// MakeCards builds n valid cards with distinct IDs and words, cycling
// through the categories
func MakeCards(n int) []card.Card {
	cards := make([]card.Card, n)
	for i := range cards {
		cards[i] = card.Card{
			ID:         fmt.Sprintf("card-%02d", i),
			Word:       fmt.Sprintf("word%02d", i),
			Definition: fmt.Sprintf("definition of word %d", i),
			Example:    fmt.Sprintf("An example using word%02d.", i),
			Category:   card.AllCategories[i%len(card.AllCategories)],
			Level:      card.LevelMedium,
		}
	}
	return cards
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// AssertDirEntries checks that a directory holds exactly the given number of entries
func AssertDirEntries(t *testing.T, dir string, expected int) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	if len(entries) != expected {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected %d entries in %s, got %d: %v", expected, dir, len(entries), names)
	}
}
