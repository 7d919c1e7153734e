package preview

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/layout"
	"codeberg.org/snonux/cardfactory/internal/testutil"
)

func TestWriteMirrorsBackSide(t *testing.T) {
	cards := testutil.MakeCards(8)
	pages := layout.Paginate(cards, layout.DefaultConfig())

	var buf bytes.Buffer
	if err := Write(&buf, pages, Options{Width: 80}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Page 1, front (8 cards)") || !strings.Contains(out, "Page 1, back (8 cards)") {
		t.Fatalf("Missing side headings:\n%s", out)
	}

	front, back, _ := strings.Cut(out, "Page 1, back")

	// card 0 is top left on the front and top right on the back
	firstRow := lineContaining(front, "WORD00")
	if idx := strings.Index(firstRow, "WORD04"); idx < strings.Index(firstRow, "WORD00") {
		t.Errorf("Expected word00 left of word04 on the front: %q", firstRow)
	}

	defRow := lineContaining(back, "definition of word 0")
	if strings.Index(defRow, "definition of word 4") > strings.Index(defRow, "definition of word 0") {
		t.Errorf("Expected the back side to be mirrored: %q", defRow)
	}
}

func TestWriteSingleSide(t *testing.T) {
	pages := layout.Paginate(testutil.MakeCards(3), layout.DefaultConfig())

	var buf bytes.Buffer
	if err := Write(&buf, pages, Options{Sides: []layout.Side{layout.Back}, Width: 60}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Contains(out, "front") {
		t.Errorf("Front side should not be printed:\n%s", out)
	}
	if !strings.Contains(out, `"An example using word01."`) {
		t.Errorf("Expected quoted example on the back:\n%s", out)
	}
}

func TestWriteLineWidth(t *testing.T) {
	cards := []card.Card{{
		ID:         "x",
		Word:       "magnanimous",
		Definition: "generous or forgiving, especially toward a rival or less powerful person",
		Example:    "The magnanimous winner shook hands with every opponent.",
		Category:   card.Adjective,
	}}
	pages := layout.Paginate(cards, layout.DefaultConfig())

	const width = 50
	var buf bytes.Buffer
	if err := Write(&buf, pages, Options{Width: width}); err != nil {
		t.Fatal(err)
	}

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "|") || strings.HasPrefix(line, "+") {
			if n := utf8.RuneCountInString(line); n > width {
				t.Errorf("Line wider than %d (%d): %q", width, n, line)
			}
		}
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, Options{Width: 80}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, nil},
		{"a b c", 10, []string{"a b c"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"naïveté is ok", 7, []string{"naïveté", "is ok"}},
	}

	for _, tt := range tests {
		got := wrap(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func lineContaining(s, substr string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}
