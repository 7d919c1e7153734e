package anki

import (
	"archive/zip"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/cardfactory/internal/testutil"
)

func TestNewAPKGGenerator(t *testing.T) {
	gen := NewAPKGGenerator("Test Deck")

	if gen.deckName != "Test Deck" {
		t.Errorf("Expected deck name 'Test Deck', got '%s'", gen.deckName)
	}
	if len(gen.cards) != 0 {
		t.Errorf("Expected empty cards slice, got %d cards", len(gen.cards))
	}
	if gen.modelID == gen.deckID {
		t.Error("Deck and model IDs must differ")
	}

	if gen := NewAPKGGenerator("  "); gen.deckName != "cardfactory" {
		t.Errorf("Expected fallback deck name, got '%s'", gen.deckName)
	}
}

func TestGenerateAPKG(t *testing.T) {
	tempDir := t.TempDir()
	outputPath := filepath.Join(tempDir, "deck.apkg")

	gen := NewAPKGGenerator("Week 1")
	for _, c := range testutil.MakeCards(3) {
		gen.AddCard(c)
	}

	if err := gen.GenerateAPKG(outputPath); err != nil {
		t.Fatalf("GenerateAPKG() error = %v", err)
	}
	testutil.AssertDirEntries(t, tempDir, 1)

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG as zip: %v", err)
	}
	defer reader.Close()

	var dbFile *zip.File
	names := make(map[string]bool)
	for _, f := range reader.File {
		names[f.Name] = true
		if f.Name == "collection.anki2" {
			dbFile = f
		}
	}
	for _, required := range []string{"collection.anki2", "media"} {
		if !names[required] {
			t.Errorf("Required file '%s' not found in APKG", required)
		}
	}
	if dbFile == nil {
		t.Fatal("collection.anki2 missing")
	}

	// Extract the collection and inspect it
	dbPath := filepath.Join(t.TempDir(), "collection.anki2")
	extract(t, dbFile, dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var notes, cards int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&notes); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cards); err != nil {
		t.Fatal(err)
	}
	if notes != 3 || cards != 6 {
		t.Errorf("Expected 3 notes and 6 cards, got %d and %d", notes, cards)
	}

	var guid, flds string
	if err := db.QueryRow("SELECT guid, flds FROM notes ORDER BY id LIMIT 1").Scan(&guid, &flds); err != nil {
		t.Fatal(err)
	}
	if guid != "card-00" {
		t.Errorf("Expected card ID as guid, got %q", guid)
	}
	fields := strings.Split(flds, "\x1f")
	if len(fields) != len(noteFields) || fields[0] != "word00" || fields[3] != "noun" {
		t.Errorf("Unexpected note fields: %q", fields)
	}

	var decks string
	if err := db.QueryRow("SELECT decks FROM col").Scan(&decks); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(decks, "Week 1") {
		t.Errorf("Deck name missing from collection: %s", decks)
	}
}

func TestGeneratorGenerateAPKG(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "deck.apkg")

	gen := NewGenerator(nil)
	if err := gen.GenerateAPKG(outputPath, "empty"); !errors.Is(err, ErrNoCards) {
		t.Errorf("Expected ErrNoCards, got %v", err)
	}

	gen.AddCards(testutil.MakeCards(2)...)
	if err := gen.GenerateAPKG(outputPath, "two"); err != nil {
		t.Fatalf("GenerateAPKG() error = %v", err)
	}
	testutil.AssertFileExists(t, outputPath)
}

func TestGenerateAPKGMissingDirectory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "missing", "deck.apkg")

	gen := NewAPKGGenerator("x")
	for _, c := range testutil.MakeCards(1) {
		gen.AddCard(c)
	}
	if err := gen.GenerateAPKG(outputPath); err == nil {
		t.Error("Expected error for a missing output directory")
	}
}

func extract(t *testing.T, f *zip.File, dst string) {
	t.Helper()

	rc, err := f.Open()
	if err != nil {
		t.Fatalf("Failed to open %s: %v", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		t.Fatalf("Failed to extract %s: %v", f.Name, err)
	}
}
