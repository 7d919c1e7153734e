package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// EscapeEntry is an entry that leaves the field when Escape is pressed, so
// the window shortcuts work again
type EscapeEntry struct {
	widget.Entry
	onEscape func()
}

// NewEscapeEntry creates a single-line entry
func NewEscapeEntry(placeholder string) *EscapeEntry {
	entry := &EscapeEntry{}
	entry.SetPlaceHolder(placeholder)
	entry.ExtendBaseWidget(entry)
	return entry
}

// NewEscapeMultiLineEntry creates a wrapping multi-line entry
func NewEscapeMultiLineEntry(placeholder string) *EscapeEntry {
	entry := &EscapeEntry{}
	entry.MultiLine = true
	entry.Wrapping = fyne.TextWrapWord
	entry.SetPlaceHolder(placeholder)
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *EscapeEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(key)
}

// SetOnEscape sets the callback for when Escape is pressed
func (e *EscapeEntry) SetOnEscape(f func()) {
	e.onEscape = f
}
