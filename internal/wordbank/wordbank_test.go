package wordbank

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/cardfactory/internal/card"
)

func TestDefault(t *testing.T) {
	bank := Default()

	expected := map[card.Category]int{
		card.Noun:      51,
		card.Adjective: 41,
		card.Verb:      51,
		card.Adverb:    20,
	}
	for category, want := range expected {
		if got := bank.Count(category); got != want {
			t.Errorf("Expected %d %s entries, got %d", want, category, got)
		}
	}
	if bank.Size() != 163 {
		t.Errorf("Expected 163 entries in total, got %d", bank.Size())
	}

	for _, category := range card.AllCategories {
		for _, entry := range bank.Entries(category) {
			if entry.Category != category {
				t.Errorf("Entry %q tagged %s, listed under %s", entry.Word, entry.Category, category)
			}
		}
	}

	if Default() != bank {
		t.Error("Default should return the same bank on every call")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
nouns:
  - word: accomplice
    definition: A person who helps another commit a crime
verb:
  - word: abate
    definition: To become less intense
    example: The storm abated.
`)
	bank, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if bank.Count(card.Noun) != 1 || bank.Count(card.Verb) != 1 || bank.Size() != 2 {
		t.Errorf("Unexpected bank contents: nouns=%d verbs=%d", bank.Count(card.Noun), bank.Count(card.Verb))
	}

	entry, ok := bank.Lookup("ABATE")
	if !ok {
		t.Fatal("Lookup should ignore case")
	}
	if entry.Example != "The storm abated." || entry.Category != card.Verb {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "unknown category",
			data:    "pronoun:\n  - word: it\n    definition: a thing\n",
			wantErr: "unknown category",
		},
		{
			name:    "missing definition",
			data:    "noun:\n  - word: it\n",
			wantErr: "required",
		},
		{
			name:    "duplicate word across categories",
			data:    "noun:\n  - word: Exile\n    definition: a\nverb:\n  - word: exile\n    definition: b\n",
			wantErr: "duplicate word",
		},
		{
			name:    "not yaml",
			data:    "noun: [",
			wantErr: "invalid yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	if err := os.WriteFile(path, []byte("adverb:\n  - word: briskly\n    definition: quickly\n"), 0644); err != nil {
		t.Fatalf("Failed to write bank: %v", err)
	}

	bank, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if bank.Count(card.Adverb) != 1 {
		t.Errorf("Expected 1 adverb, got %d", bank.Count(card.Adverb))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	bank := Default()
	entries := bank.Entries(card.Noun)
	entries[0].Word = "changed"
	if bank.Entries(card.Noun)[0].Word == "changed" {
		t.Error("Entries must return a copy")
	}
}

func TestToCard(t *testing.T) {
	entry := Entry{Word: "abate", Definition: "lessen", Example: "It abated.", Category: card.Verb}
	c := entry.ToCard("id1", card.LevelISEE)
	if c.ID != "id1" || c.Word != "abate" || c.Category != card.Verb || c.Level != card.LevelISEE {
		t.Errorf("Unexpected card: %+v", c)
	}
}
