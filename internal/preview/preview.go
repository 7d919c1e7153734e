// Package preview draws paginated cards as a text grid for the terminal.
package preview

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"codeberg.org/snonux/cardfactory/internal/layout"
)

// DefaultWidth is used when the output is not a terminal
const DefaultWidth = 80

// minCellWidth keeps very narrow terminals readable
const minCellWidth = 12

// Options controls the preview output
type Options struct {
	Sides []layout.Side
	Width int // total width in columns, 0 detects the terminal width
}

// TerminalWidth returns the width of f when it is a terminal and
// DefaultWidth otherwise
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return DefaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Write renders every requested side of every page to w
func Write(w io.Writer, pages []layout.Page, opts Options) error {
	if len(opts.Sides) == 0 {
		opts.Sides = []layout.Side{layout.Front, layout.Back}
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
		if f, ok := w.(*os.File); ok {
			opts.Width = TerminalWidth(f)
		}
	}

	for _, page := range pages {
		for _, side := range opts.Sides {
			if _, err := fmt.Fprintf(w, "Page %d, %s (%d cards)\n", page.Index+1, side, page.Len()); err != nil {
				return err
			}
			if err := writeGrid(w, page, side, opts.Width); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeGrid prints one side as boxed cells laid out like the printed sheet
func writeGrid(w io.Writer, page layout.Page, side layout.Side, width int) error {
	cols := page.Config.Columns
	cellWidth := (width - 1) / cols
	cellWidth = max(cellWidth-1, minCellWidth)

	border := "+" + strings.Repeat(strings.Repeat("-", cellWidth)+"+", cols) + "\n"

	var b strings.Builder
	b.WriteString(border)
	for _, row := range page.Grid(side) {
		cells := make([][]string, cols)
		height := 1
		for c, slot := range row {
			cells[c] = cellLines(slot, side, cellWidth)
			height = max(height, len(cells[c]))
		}

		for line := 0; line < height; line++ {
			b.WriteString("|")
			for c := range cells {
				text := ""
				if line < len(cells[c]) {
					text = cells[c][line]
				}
				b.WriteString(pad(text, cellWidth))
				b.WriteString("|")
			}
			b.WriteString("\n")
		}
		b.WriteString(border)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// cellLines returns the wrapped content of one slot
func cellLines(slot *layout.Slot, side layout.Side, width int) []string {
	if slot == nil {
		return nil
	}

	inner := width - 2
	c := slot.Card
	if side == layout.Front {
		lines := wrap(strings.ToUpper(c.Word), inner)
		return append(lines, "("+string(c.Category)+")")
	}

	lines := wrap(c.Definition, inner)
	if c.Example != "" {
		lines = append(lines, wrap(`"`+c.Example+`"`, inner)...)
	}
	return lines
}

// wrap breaks text on spaces into lines of at most width runes
func wrap(text string, width int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// pad surrounds s with one space on each side and fills up to width
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width-2 {
		s = string([]rune(s)[:width-2])
		n = width - 2
	}
	return " " + s + strings.Repeat(" ", width-1-n)
}
