// Package batch reads manual flashcards in bulk from a plain text file.
package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// ErrMalformedLine is matched by LineError
var ErrMalformedLine = errors.New("malformed batch line")

// LineError reports the line that could not be parsed
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the cause
func (e *LineError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedLine) match
func (e *LineError) Is(target error) bool {
	return target == ErrMalformedLine
}

// WordEntry is one parsed line
type WordEntry struct {
	Line       int
	Word       string
	Definition string
	Example    string
	Category   card.Category
	Level      card.Level
	// NeedsLookup marks a bare headword whose definition, example and
	// category come from the word bank
	NeedsLookup bool
}

// ToCard converts the entry into an unsaved card without an ID
func (e WordEntry) ToCard() card.Card {
	return card.Card{
		Word:       e.Word,
		Definition: e.Definition,
		Example:    e.Example,
		Category:   e.Category,
		Level:      e.Level,
	}
}

// ReadBatchFile reads cards from a file. Supported line formats:
//   - "word" alone, completed from the word bank
//   - "word = definition"
//   - "word = definition | example | category | level" with trailing
//     fields optional
//
// Blank lines and lines starting with '#' are skipped. Category defaults
// to noun and level to medium.
func ReadBatchFile(filename string) ([]WordEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads batch lines from r
func Parse(r io.Reader) ([]WordEntry, error) {
	var entries []WordEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, &LineError{Line: lineNo, Err: err}
		}
		entry.Line = lineNo
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}

func parseLine(line string) (WordEntry, error) {
	entry := WordEntry{Category: card.Noun, Level: card.LevelMedium}

	word, rest, found := strings.Cut(line, "=")
	entry.Word = strings.TrimSpace(word)
	if entry.Word == "" {
		return entry, card.ErrEmptyWord
	}
	if !found {
		entry.NeedsLookup = true
		entry.Level = card.LevelISEE
		return entry, nil
	}

	fields := strings.Split(rest, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) > 4 {
		return entry, fmt.Errorf("expected at most 4 fields after '=', got %d", len(fields))
	}

	entry.Definition = fields[0]
	if entry.Definition == "" {
		return entry, card.ErrEmptyDefinition
	}
	if len(fields) > 1 {
		entry.Example = fields[1]
	}
	if len(fields) > 2 && fields[2] != "" {
		category, err := card.ParseCategory(fields[2])
		if err != nil {
			return entry, err
		}
		entry.Category = category
	}
	if len(fields) > 3 && fields[3] != "" {
		entry.Level = card.Level(fields[3])
	}

	return entry, nil
}
