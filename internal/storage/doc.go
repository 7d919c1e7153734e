// Package storage persists saved card sets and the working session.
//
// Everything is stored through the small KV port so the backing store can
// be swapped: an SQLite database (default), a directory of JSON files or
// an in-memory map. All saved sets live under one fixed key and every
// change rewrites the whole collection, which is fine for the tens of
// sets a single user keeps.
package storage
