package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"codeberg.org/snonux/cardfactory/internal/layout"
)

// DefaultFilename is the name of the exported document
const DefaultFilename = "flashcards-double-sided.pdf"

var (
	// ErrRender is matched by RenderError
	ErrRender = errors.New("failed to render PDF")
	// ErrNothingToRender is returned for an empty page list
	ErrNothingToRender = errors.New("no cards to render")
)

// RenderError wraps a failure of the PDF engine
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render PDF: %v", e.Err)
}

// Unwrap returns the engine error
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRender) match
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// Options holds the page geometry and typography, all in points
type Options struct {
	PageSize       string  // fpdf page size name
	PageWidth      float64 // must match PageSize
	PageHeight     float64
	Margin         float64
	HeaderBand     float64 // space between the top margin and the grid
	BottomGap      float64 // extra space kept free below the grid
	FontFamily     string
	HeaderSize     float64
	WordSize       float64
	CategorySize   float64
	DefinitionSize float64
	ExampleSize    float64
}

// DefaultOptions returns US Letter portrait with 0.25in margins
func DefaultOptions() Options {
	return Options{
		PageSize:       "Letter",
		PageWidth:      612,
		PageHeight:     792,
		Margin:         18,
		HeaderBand:     20,
		BottomGap:      10,
		FontFamily:     "Helvetica",
		HeaderSize:     10,
		WordSize:       22,
		CategorySize:   14,
		DefinitionSize: 14,
		ExampleSize:    12,
	}
}

// Renderer turns layout pages into a PDF document
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer. Zero-valued options fall back to the
// defaults.
func NewRenderer(opts Options) *Renderer {
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		opts = DefaultOptions()
	}
	return &Renderer{opts: opts}
}

// Options returns the effective options
func (r *Renderer) Options() Options {
	return r.opts
}

// Render writes the whole document to w
func (r *Renderer) Render(w io.Writer, pages []layout.Page) error {
	data, err := r.Bytes(pages)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Bytes renders the document into memory
func (r *Renderer) Bytes(pages []layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNothingToRender
	}

	doc := fpdf.New("P", "pt", r.opts.PageSize, "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(r.opts.Margin, r.opts.Margin, r.opts.Margin)

	d := &drawer{
		doc:  doc,
		opts: r.opts,
		tr:   doc.UnicodeTranslatorFromDescriptor(""),
	}

	for _, page := range pages {
		if err := page.Config.Validate(); err != nil {
			return nil, &RenderError{Err: err}
		}
		d.frontPage(page)
		d.backPage(page)
	}

	if doc.Err() {
		return nil, &RenderError{Err: doc.Error()}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

// Export renders the document and atomically writes it to path. On
// failure no file is created and an existing file is left untouched.
func (r *Renderer) Export(path string, pages []layout.Page) error {
	data, err := r.Bytes(pages)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move PDF into place: %w", err)
	}
	return nil
}

// drawer holds the state of one document while it is drawn
type drawer struct {
	doc  *fpdf.Fpdf
	opts Options
	tr   func(string) string
}

// cellSize returns the width and height of one card for the grid
func (d *drawer) cellSize(cfg layout.Config) (float64, float64) {
	o := d.opts
	width := (o.PageWidth - 2*o.Margin) / float64(cfg.Columns)
	height := (o.PageHeight - 2*o.Margin - o.HeaderBand - o.BottomGap) / float64(cfg.Rows)
	return width, height
}

// origin returns the top left corner of a slot
func (d *drawer) origin(slot layout.Slot, cfg layout.Config) (float64, float64) {
	w, h := d.cellSize(cfg)
	x := d.opts.Margin + float64(slot.Column)*w
	y := d.opts.Margin + d.opts.HeaderBand + float64(slot.Row)*h
	return x, y
}

func (d *drawer) header(text string) {
	d.doc.SetFont(d.opts.FontFamily, "", d.opts.HeaderSize)
	d.doc.SetTextColor(100, 100, 100)
	d.doc.Text(d.opts.Margin, d.opts.Margin+10, d.tr(text))
}

// segment is a straight line from (x1, y1) to (x2, y2)
type segment struct {
	x1, y1, x2, y2 float64
}

// cutSegments returns the guides between columns and rows. They span the
// grid only, never the free band below it.
func (d *drawer) cutSegments(cfg layout.Config) []segment {
	o := d.opts
	w, h := d.cellSize(cfg)
	top := o.Margin + o.HeaderBand
	bottom := top + float64(cfg.Rows)*h

	var segments []segment
	for c := 1; c < cfg.Columns; c++ {
		x := o.Margin + float64(c)*w
		segments = append(segments, segment{x, top, x, bottom})
	}
	for r := 1; r < cfg.Rows; r++ {
		y := top + float64(r)*h
		segments = append(segments, segment{o.Margin, y, o.PageWidth - o.Margin, y})
	}
	return segments
}

// cutLines draws the gray guides between columns and rows
func (d *drawer) cutLines(cfg layout.Config) {
	d.doc.SetDrawColor(128, 128, 128)
	d.doc.SetLineWidth(0.5)

	for _, s := range d.cutSegments(cfg) {
		d.doc.Line(s.x1, s.y1, s.x2, s.y2)
	}
}

func (d *drawer) border(x, y, w, h float64) {
	d.doc.SetDrawColor(0, 0, 0)
	d.doc.SetLineWidth(1)
	d.doc.Rect(x+2, y+2, w-4, h-4, "D")
}

func (d *drawer) frontPage(page layout.Page) {
	d.doc.AddPage()
	d.header(fmt.Sprintf("Flashcards - Front Side (Page %d) - %d cards", page.Index+1, page.Len()))
	d.cutLines(page.Config)

	w, h := d.cellSize(page.Config)
	for _, slot := range page.Front {
		x, y := d.origin(slot, page.Config)
		d.border(x, y, w, h)

		// Word, bold and centered
		d.doc.SetFont(d.opts.FontFamily, "B", d.opts.WordSize)
		d.doc.SetTextColor(0, 0, 0)
		lines := d.wrap(slot.Card.Word, w-40)
		lineStep := d.opts.WordSize - 2
		wordY := y + (h-float64(len(lines))*lineStep)/2 - 10
		for i, line := range lines {
			lineX := x + (w-d.doc.GetStringWidth(line))/2
			d.doc.Text(lineX, wordY+float64(i)*lineStep, line)
		}

		// Category below the word
		d.doc.SetFont(d.opts.FontFamily, "", d.opts.CategorySize)
		d.doc.SetTextColor(100, 100, 100)
		category := d.tr(string(slot.Card.Category))
		catX := x + (w-d.doc.GetStringWidth(category))/2
		d.doc.Text(catX, wordY+float64(len(lines))*lineStep+20, category)
	}
}

func (d *drawer) backPage(page layout.Page) {
	d.doc.AddPage()
	d.header(fmt.Sprintf("Flashcards - Back Side (Page %d) - Print on reverse - %d cards", page.Index+1, page.Len()))
	d.cutLines(page.Config)

	w, h := d.cellSize(page.Config)
	for _, slot := range page.Back {
		x, y := d.origin(slot, page.Config)
		d.border(x, y, w, h)

		// Plain inner panel so the text never sits on stray marks
		d.doc.SetFillColor(255, 255, 255)
		d.doc.Rect(x+4, y+4, w-8, h-8, "F")

		d.doc.SetFont(d.opts.FontFamily, "", d.opts.DefinitionSize)
		d.doc.SetTextColor(0, 0, 0)
		defStep := d.opts.DefinitionSize
		top := y + 20
		lines := d.wrap(slot.Card.Definition, w-24)
		for i, line := range lines {
			lineY := top + float64(i)*defStep
			if lineY < y+h-20 {
				d.doc.Text(x+12, lineY, line)
			}
		}

		if slot.Card.Example == "" {
			continue
		}
		exampleY := top + float64(len(lines))*defStep + 10
		if exampleY >= y+h-30 {
			continue
		}

		d.doc.SetFont(d.opts.FontFamily, "I", d.opts.ExampleSize)
		d.doc.SetTextColor(80, 80, 80)
		exStep := d.opts.ExampleSize
		for i, line := range d.wrap(`"`+slot.Card.Example+`"`, w-24) {
			lineY := exampleY + float64(i)*exStep
			if lineY < y+h-15 {
				d.doc.Text(x+12, lineY, line)
			}
		}
	}
}

// wrap splits text into translated lines no wider than width in the
// current font. A single word wider than a line is broken by character.
func (d *drawer) wrap(text string, width float64) []string {
	words := strings.Fields(d.tr(text))
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if d.doc.GetStringWidth(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		for d.doc.GetStringWidth(word) > width && len(word) > 1 {
			cut := d.fit(word, width)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	return append(lines, current)
}

// fit returns how many leading bytes of s fit into width, at least one.
// The translated text is single-byte encoded.
func (d *drawer) fit(s string, width float64) int {
	n := 1
	for n < len(s) && d.doc.GetStringWidth(s[:n+1]) <= width {
		n++
	}
	return n
}
