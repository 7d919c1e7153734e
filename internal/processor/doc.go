// Package processor contains the session logic shared by the command line
// and the desktop window. A Session owns the working deck, the word bank
// and the persistence stores, and turns user intents (generate, add,
// edit, regenerate, save, load, export) into calls on the core packages.
// Every mutation of the working deck is written back to the session
// store so the command line can work step by step.
package processor
