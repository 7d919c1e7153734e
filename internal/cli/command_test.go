package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cardfactory/internal/processor"
	"codeberg.org/snonux/cardfactory/internal/storage"
)

// runCLI executes the root command against a file store in stateDir and
// returns everything written to standard output
func runCLI(t *testing.T, stateDir string, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := CreateRootCommand(NewFlags())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}

	base := []string{
		"--storage", "file",
		"--state-path", filepath.Join(stateDir, "store"),
		"--export-dir", filepath.Join(stateDir, "exports"),
	}
	cmd.SetArgs(append(base, args...))

	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, stateDir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, stateDir, nil, args...)
	if err != nil {
		t.Fatalf("cardfactory %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// lastLine returns the last non-empty output line
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func TestCreateRootCommand(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "cardfactory" {
		t.Errorf("Expected Use to be 'cardfactory', got %s", cmd.Use)
	}
	if !strings.Contains(cmd.Short, "double-sided") {
		t.Errorf("Expected Short description to mention double-sided printing, got %q", cmd.Short)
	}

	persistent := []string{"config", "storage", "state-path", "export-dir", "word-bank", "log-level", "log-format", "columns", "rows"}
	for _, name := range persistent {
		t.Run("flag_"+name, func(t *testing.T) {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}

	subcommands := []string{"generate", "add", "list", "edit", "remove", "regenerate", "clear", "export", "sets", "import", "archive", "preview", "gui"}
	for _, name := range subcommands {
		t.Run("command_"+name, func(t *testing.T) {
			found, _, err := cmd.Find([]string{name})
			if err != nil || found == cmd {
				t.Errorf("Expected subcommand %s to exist", name)
			}
		})
	}
}

func TestSubcommandFlags(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cmd := CreateRootCommand(NewFlags())

	tests := []struct {
		command    string
		flag       string
		defaultVal string
	}{
		{"generate", "nouns", "3"},
		{"generate", "adverbs", "2"},
		{"generate", "avoid-duplicates", "true"},
		{"add", "category", "noun"},
		{"add", "level", "medium"},
		{"edit", "category", ""},
		{"export", "format", "pdf"},
		{"export", "deck-name", "cardfactory"},
		{"preview", "side", "both"},
		{"gui", "delay", "1.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.command+"_"+tt.flag, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			if err != nil {
				t.Fatalf("Find(%s) error = %v", tt.command, err)
			}
			flag := sub.Flags().Lookup(tt.flag)
			if flag == nil {
				t.Fatalf("flag --%s not found on %s", tt.flag, tt.command)
			}
			if flag.DefValue != tt.defaultVal {
				t.Errorf("Expected default %q, got %q", tt.defaultVal, flag.DefValue)
			}
		})
	}
}

func TestAddListEditRemove(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "add", "candid", "truthful and straightforward", "--category", "adjective", "--example", "a candid reply")
	if !strings.Contains(out, `Added "candid" (adjective)`) {
		t.Errorf("Expected add notification, got %q", out)
	}
	id := lastLine(out)

	out = mustRun(t, dir, "list")
	for _, want := range []string{"candid", "adjective", "medium", id, "1 cards, 1 pages (0 nouns, 1 adjectives, 0 verbs, 0 adverbs)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected list output to contain %q, got:\n%s", want, out)
		}
	}

	mustRun(t, dir, "edit", id, "--definition", "frank", "--level", "hard")
	out = mustRun(t, dir, "list")
	if !strings.Contains(out, "frank") || !strings.Contains(out, "hard") {
		t.Errorf("Expected edited card in list, got:\n%s", out)
	}

	mustRun(t, dir, "remove", id)
	out = mustRun(t, dir, "list")
	if !strings.Contains(out, "No flashcards yet") {
		t.Errorf("Expected empty deck, got:\n%s", out)
	}
}

func TestAddErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, dir, nil, "add", "candid", "frank", "--category", "pronoun"); err == nil {
		t.Error("Expected error for unknown category")
	}
	if _, err := runCLI(t, dir, nil, "add", "candid"); err == nil {
		t.Error("Expected error for missing definition")
	}
	if _, err := runCLI(t, dir, nil, "add", "  ", "frank"); err == nil {
		t.Error("Expected error for blank word")
	}
}

func TestEditWithoutChanges(t *testing.T) {
	dir := t.TempDir()
	id := lastLine(mustRun(t, dir, "add", "candid", "frank"))

	_, err := runCLI(t, dir, nil, "edit", id)
	if !errors.Is(err, ErrEmptyPatch) {
		t.Errorf("Expected ErrEmptyPatch, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "generate", "--recommended")
	if !strings.Contains(out, "Created 10 flashcards") {
		t.Errorf("Expected generation notice, got:\n%s", out)
	}

	out = mustRun(t, dir, "list")
	if !strings.Contains(out, "10 cards, 2 pages (3 nouns, 3 adjectives, 2 verbs, 2 adverbs)") {
		t.Errorf("Expected recommended mix, got:\n%s", out)
	}

	mustRun(t, dir, "generate", "--nouns", "1", "--adjectives", "0", "--verbs", "0", "--adverbs", "0")
	out = mustRun(t, dir, "list")
	if !strings.Contains(out, "1 cards, 1 pages (1 nouns, 0 adjectives, 0 verbs, 0 adverbs)") {
		t.Errorf("Expected generation to replace the deck, got:\n%s", out)
	}
}

func TestGenerateCountOutOfRange(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), nil, "generate", "--nouns", "11")
	if !errors.Is(err, ErrCountOutOfRange) {
		t.Errorf("Expected ErrCountOutOfRange, got %v", err)
	}
}

func TestRegenerateAndClear(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "generate", "--nouns", "2", "--adjectives", "0", "--verbs", "0", "--adverbs", "0")

	out := mustRun(t, dir, "list")
	fields := strings.Fields(strings.Split(out, "\n")[1])
	id := fields[0]

	out = mustRun(t, dir, "regenerate", id)
	if !strings.Contains(out, "Card regenerated!") {
		t.Errorf("Expected regenerate notice, got:\n%s", out)
	}

	mustRun(t, dir, "clear")
	out = mustRun(t, dir, "list")
	if !strings.Contains(out, "No flashcards yet") {
		t.Errorf("Expected empty deck after clear, got:\n%s", out)
	}
}

func TestSets(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "candid", "frank")
	mustRun(t, dir, "add", "abate", "to lessen", "--category", "verb")

	out := mustRun(t, dir, "sets", "save", "week 1")
	if !strings.Contains(out, `Set saved! "week 1"`) {
		t.Errorf("Expected save notice, got %q", out)
	}

	out = mustRun(t, dir, "sets", "list")
	if !strings.Contains(out, "week 1") || !strings.Contains(out, "2") {
		t.Errorf("Expected saved set in list, got:\n%s", out)
	}

	mustRun(t, dir, "clear")
	out = mustRun(t, dir, "sets", "load", "week 1")
	if !strings.Contains(out, "Loaded \"week 1\" with 2 cards") {
		t.Errorf("Expected load notice, got %q", out)
	}
	if out := mustRun(t, dir, "list"); !strings.Contains(out, "abate") {
		t.Errorf("Expected loaded cards in deck, got:\n%s", out)
	}

	// Declining the prompt keeps the set
	out, err := runCLI(t, dir, strings.NewReader("n\n"), "sets", "delete", "week 1")
	if err != nil {
		t.Fatalf("sets delete error = %v", err)
	}
	if !strings.Contains(out, "Aborted") {
		t.Errorf("Expected abort, got %q", out)
	}

	out, err = runCLI(t, dir, strings.NewReader("y\n"), "sets", "delete", "week 1")
	if err != nil {
		t.Fatalf("sets delete error = %v", err)
	}
	if !strings.Contains(out, "Set deleted!") {
		t.Errorf("Expected delete notice, got %q", out)
	}

	if out := mustRun(t, dir, "sets", "list"); !strings.Contains(out, "No saved sets") {
		t.Errorf("Expected no sets, got:\n%s", out)
	}

	_, err = runCLI(t, dir, nil, "sets", "delete", "week 1", "--yes")
	if !errors.Is(err, storage.ErrSetNotFound) {
		t.Errorf("Expected ErrSetNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, nil, "export")
	if !errors.Is(err, processor.ErrEmptyDeck) {
		t.Errorf("Expected ErrEmptyDeck, got %v", err)
	}

	mustRun(t, dir, "add", "candid", "frank")

	out := mustRun(t, dir, "export")
	pdfPath := filepath.Join(dir, "exports", "flashcards-double-sided.pdf")
	if lastLine(out) != pdfPath {
		t.Errorf("Expected export path %s, got %q", pdfPath, out)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatalf("Failed to read exported PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("Exported file is not a PDF")
	}

	csvPath := filepath.Join(dir, "out", "deck.csv")
	mustRun(t, dir, "export", "--format", "csv", "--output", csvPath)
	data, err = os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Failed to read exported CSV: %v", err)
	}
	if !strings.Contains(string(data), "candid") {
		t.Errorf("Expected card in CSV, got %q", data)
	}

	mustRun(t, dir, "export", "--format", "apkg", "--deck-name", "ISEE week 1")
	if _, err := os.Stat(filepath.Join(dir, "exports", "ISEE_week_1.apkg")); err != nil {
		t.Errorf("Expected Anki package in export directory: %v", err)
	}

	_, err = runCLI(t, dir, nil, "export", "--format", "docx")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "preview")
	if !strings.Contains(out, "No flashcards yet") {
		t.Errorf("Expected empty notice, got %q", out)
	}

	mustRun(t, dir, "add", "candid", "frank")

	out = mustRun(t, dir, "preview", "--side", "front")
	if !strings.Contains(out, "Page 1, front (1 cards)") || strings.Contains(out, "back") {
		t.Errorf("Expected front side only, got:\n%s", out)
	}
	if !strings.Contains(out, "CANDID") {
		t.Errorf("Expected word on front, got:\n%s", out)
	}

	out = mustRun(t, dir, "preview")
	if !strings.Contains(out, "Page 1, back (1 cards)") || !strings.Contains(out, "frank") {
		t.Errorf("Expected back side with definition, got:\n%s", out)
	}

	_, err := runCLI(t, dir, nil, "preview", "--side", "left")
	if !errors.Is(err, ErrUnknownSide) {
		t.Errorf("Expected ErrUnknownSide, got %v", err)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	batchFile := filepath.Join(dir, "words.txt")
	content := "# week 1\ncandid = frank | a candid reply | adjective\nacumen\nnotaword\n"
	if err := os.WriteFile(batchFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write batch file: %v", err)
	}

	out := mustRun(t, dir, "import", batchFile)
	if !strings.Contains(out, `Skipped "notaword"`) {
		t.Errorf("Expected skipped word notice, got:\n%s", out)
	}
	if !strings.Contains(out, "Imported 2 cards") {
		t.Errorf("Expected import summary, got:\n%s", out)
	}
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "candid", "frank")

	out := mustRun(t, dir, "archive")
	if !strings.Contains(out, "State archived to") {
		t.Errorf("Expected archive notice, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "archive")); err != nil {
		t.Errorf("Expected archive directory: %v", err)
	}

	out = mustRun(t, dir, "list")
	if !strings.Contains(out, "No flashcards yet") {
		t.Errorf("Expected fresh deck after archive, got:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetOut(io.Discard)

			got, err := confirm(cmd, "Delete?")
			if err != nil {
				t.Fatalf("confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test-config.yaml")
	content := `storage:
  backend: memory
layout:
  columns: 3
generate:
  nouns: 5`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	InitConfig(cfgPath)

	if got := viper.GetString("storage.backend"); got != "memory" {
		t.Errorf("Expected storage backend memory, got %s", got)
	}
	if got := viper.GetInt("layout.columns"); got != 3 {
		t.Errorf("Expected 3 columns, got %d", got)
	}

	// Test environment variable prefix and nested keys
	t.Setenv("CARDFACTORY_GENERATE_NOUNS", "7")
	if got := viper.GetInt("generate.nouns"); got != 7 {
		t.Errorf("Expected environment to override nouns, got %d", got)
	}
}
