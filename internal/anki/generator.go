package anki

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// ErrNoCards is returned when exporting an empty collection
var ErrNoCards = errors.New("no cards to export")

// GeneratorOptions configures the CSV export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include CSV headers
	Delimiter      rune   // Field delimiter, comma when zero
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "cardfactory_anki.csv",
		IncludeHeaders: true,
		Delimiter:      ',',
	}
}

// Generator creates Anki-compatible import files from a deck
type Generator struct {
	options *GeneratorOptions
	cards   []card.Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]card.Card, 0),
	}
}

// AddCards adds cards to the collection in order
func (g *Generator) AddCards(cards ...card.Card) {
	g.cards = append(g.cards, cards...)
}

// Cards returns the collected cards
func (g *Generator) Cards() []card.Card {
	return g.cards
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	if len(g.cards) == 0 {
		return ErrNoCards
	}

	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if g.options.Delimiter != 0 {
		writer.Comma = g.options.Delimiter
	}

	if g.options.IncludeHeaders {
		headers := []string{"Word", "Definition", "Example", "Category", "Level", "Tags"}
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, c := range g.cards {
		record := []string{
			c.Word,
			c.Definition,
			c.Example,
			string(c.Category),
			string(c.Level),
			tags(c),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card %q: %w", c.Word, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// GenerateAPKG creates a .apkg file holding every collected card
func (g *Generator) GenerateAPKG(outputPath, deckName string) error {
	if len(g.cards) == 0 {
		return ErrNoCards
	}

	apkgGen := NewAPKGGenerator(deckName)
	for _, c := range g.cards {
		apkgGen.AddCard(c)
	}
	return apkgGen.GenerateAPKG(outputPath)
}

// Stats returns the number of cards per category
func (g *Generator) Stats() map[card.Category]int {
	return card.CountByCategory(g.cards)
}

// tags turns category and level into space separated Anki tags
func tags(c card.Card) string {
	var out []string
	if c.Category != "" {
		out = append(out, string(c.Category))
	}
	if c.Level != "" {
		out = append(out, strings.ReplaceAll(strings.TrimSpace(string(c.Level)), " ", "_"))
	}
	return strings.Join(out, " ")
}
