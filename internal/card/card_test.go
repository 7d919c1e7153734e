package card

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
		wantErr  bool
	}{
		{"noun", Noun, false},
		{"Adjective", Adjective, false},
		{" verbs ", Verb, false},
		{"ADVERB", Adverb, false},
		{"pronoun", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCategory) {
					t.Errorf("Expected ErrUnknownCategory, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Card{ID: "a1", Word: "acumen", Definition: "Good judgment", Category: Noun}

	tests := []struct {
		name    string
		card    Card
		wantErr error
	}{
		{"valid card", valid, nil},
		{"empty example is fine", Card{Word: "x", Definition: "y", Category: Verb}, nil},
		{"blank word", Card{Word: "  ", Definition: "y", Category: Verb}, ErrEmptyWord},
		{"missing definition", Card{Word: "x", Category: Verb}, ErrEmptyDefinition},
		{"unknown category", Card{Word: "x", Definition: "y", Category: "pronoun"}, ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	original := Card{ID: "a1", Word: "acumen", Definition: "Good judgment", Category: Noun, Level: LevelISEE}

	word := "astute"
	category := Adjective
	updated := original.Apply(Patch{Word: &word, Category: &category})

	if updated.ID != "a1" {
		t.Errorf("Expected ID to be preserved, got %s", updated.ID)
	}
	if updated.Word != "astute" || updated.Category != Adjective {
		t.Errorf("Patch not applied: %+v", updated)
	}
	if updated.Definition != original.Definition || updated.Level != original.Level {
		t.Errorf("Untouched fields changed: %+v", updated)
	}
	if original.Word != "acumen" {
		t.Error("Apply must not modify the receiver")
	}
	if !(Patch{}).IsEmpty() {
		t.Error("Zero patch should be empty")
	}
}

func TestCountByCategory(t *testing.T) {
	cards := []Card{
		{Category: Noun}, {Category: Noun}, {Category: Verb}, {Category: Adverb},
	}
	counts := CountByCategory(cards)
	if counts[Noun] != 2 || counts[Verb] != 1 || counts[Adverb] != 1 || counts[Adjective] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}
