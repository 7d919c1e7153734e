// Package layout paginates a deck into print pages for duplex printing.
//
// Cards fill each page column by column, top to bottom. On the back side
// the column is mirrored so that, after the sheet is flipped along its
// vertical axis, every card's back lands behind its own front. Every
// renderer (PDF, terminal preview, GUI preview) places cards using the
// slots computed here and never recomputes positions itself.
package layout

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/cardfactory/internal/card"
)

// Side is the printed side of a sheet
type Side int

const (
	// Front shows the word and category
	Front Side = iota
	// Back shows the definition and example
	Back
)

func (s Side) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ErrInvalidConfig is returned for non-positive grid dimensions
var ErrInvalidConfig = errors.New("invalid layout config")

// Config is the grid of a single printed page
type Config struct {
	Columns int
	Rows    int
}

// DefaultConfig returns the 2 columns by 4 rows grid of 8 cards per page
func DefaultConfig() Config {
	return Config{Columns: 2, Rows: 4}
}

// Validate checks the grid dimensions
func (c Config) Validate() error {
	if c.Columns < 1 || c.Rows < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidConfig, c.Columns, c.Rows)
	}
	return nil
}

// CardsPerPage returns the capacity of one page
func (c Config) CardsPerPage() int {
	return c.Columns * c.Rows
}

// Slot is the placement of one card on one side of a page
type Slot struct {
	Card      card.Card
	CardIndex int // position of the card within its page
	Column    int
	Row       int
	Side      Side
}

// Page is one logical page: a front sheet side and its mirrored back
type Page struct {
	Index  int // 0-based
	Config Config
	Front  []Slot
	Back   []Slot
}

// Len returns the number of occupied slots on the page
func (p Page) Len() int {
	return len(p.Front)
}

// Slots returns the slots of the given side
func (p Page) Slots(side Side) []Slot {
	if side == Back {
		return p.Back
	}
	return p.Front
}

// Grid returns the slots of one side indexed as grid[row][column]. Empty
// positions are nil.
func (p Page) Grid(side Side) [][]*Slot {
	grid := make([][]*Slot, p.Config.Rows)
	for r := range grid {
		grid[r] = make([]*Slot, p.Config.Columns)
	}

	slots := p.Slots(side)
	for i := range slots {
		grid[slots[i].Row][slots[i].Column] = &slots[i]
	}
	return grid
}

// PageCount returns ceil(n / cardsPerPage)
func PageCount(n int, cfg Config) int {
	per := cfg.CardsPerPage()
	if n <= 0 || per <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

// Paginate splits cards into pages. An empty deck yields no pages. cfg
// must be valid.
func Paginate(cards []card.Card, cfg Config) []Page {
	per := cfg.CardsPerPage()
	count := PageCount(len(cards), cfg)
	pages := make([]Page, 0, count)

	for p := 0; p < count; p++ {
		start := p * per
		end := min(start+per, len(cards))
		pageCards := cards[start:end]

		page := Page{
			Index:  p,
			Config: cfg,
			Front:  make([]Slot, len(pageCards)),
			Back:   make([]Slot, len(pageCards)),
		}

		for i, c := range pageCards {
			column := i / cfg.Rows
			row := i % cfg.Rows

			page.Front[i] = Slot{Card: c, CardIndex: i, Column: column, Row: row, Side: Front}
			page.Back[i] = Slot{Card: c, CardIndex: i, Column: cfg.Columns - 1 - column, Row: row, Side: Back}
		}

		pages = append(pages, page)
	}

	return pages
}
