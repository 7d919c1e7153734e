// Package pdf draws paginated flashcards as a print-ready double-sided
// PDF.
//
// Every logical page from the layout package becomes two physical pages.
// The front page shows words and categories, and the back page shows
// definitions and examples with mirrored columns. Printing with duplex
// "flip on long edge" lines each definition up behind its word. Cut
// guides are drawn between the cards.
//
// The whole document is rendered in memory first, so a failed render
// never leaves a partial file behind.
package pdf
