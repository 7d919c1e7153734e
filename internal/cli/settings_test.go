package cli

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/layout"
	"codeberg.org/snonux/cardfactory/internal/logging"
	"codeberg.org/snonux/cardfactory/internal/processor"
	"codeberg.org/snonux/cardfactory/internal/sampler"
	"codeberg.org/snonux/cardfactory/internal/storage"
)

func TestLoadSettingsDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	defaults := processor.DefaultSettings()
	if settings.Storage != storage.DefaultConfig() {
		t.Errorf("Expected storage %+v, got %+v", storage.DefaultConfig(), settings.Storage)
	}
	if settings.ExportPath() != defaults.ExportPath() {
		t.Errorf("Expected export path %s, got %s", defaults.ExportPath(), settings.ExportPath())
	}
	if settings.Layout != layout.DefaultConfig() {
		t.Errorf("Expected layout %+v, got %+v", layout.DefaultConfig(), settings.Layout)
	}
	if diff := cmp.Diff(sampler.RecommendedCounts(), settings.Generate.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if !settings.Generate.AvoidDuplicates {
		t.Error("Expected duplicates to be avoided by default")
	}
}

func TestLoadSettingsFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	viper.Set("storage.backend", "file")
	viper.Set("export.directory", dir)
	viper.Set("export.filename", "cards.pdf")
	viper.Set("layout.columns", 3)
	viper.Set("layout.rows", 5)
	viper.Set("generate.nouns", 10)
	viper.Set("generate.adverbs", 0)
	viper.Set("generate.avoid_duplicates", false)
	viper.Set("generate.delay", "250ms")
	viper.Set("log.level", "debug")
	viper.Set("gui.auto_flip", true)

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if settings.Storage.Backend != storage.BackendFile {
		t.Errorf("Expected file backend, got %s", settings.Storage.Backend)
	}
	wantStore := filepath.Join(storage.DefaultStateDir(), "store")
	if settings.Storage.Path != wantStore {
		t.Errorf("Expected file store at %s, got %s", wantStore, settings.Storage.Path)
	}
	if got := settings.ExportPath(); got != filepath.Join(dir, "cards.pdf") {
		t.Errorf("Expected export path in %s, got %s", dir, got)
	}
	if settings.Layout != (layout.Config{Columns: 3, Rows: 5}) {
		t.Errorf("Expected 3x5 layout, got %+v", settings.Layout)
	}

	wantCounts := map[card.Category]int{card.Noun: 10, card.Adjective: 3, card.Verb: 2, card.Adverb: 0}
	if diff := cmp.Diff(wantCounts, settings.Generate.Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if settings.Generate.AvoidDuplicates {
		t.Error("Expected avoid duplicates to be off")
	}
	if settings.Generate.Delay != 250*time.Millisecond {
		t.Errorf("Expected delay 250ms, got %v", settings.Generate.Delay)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", settings.LogLevel)
	}
	if !settings.AutoFlip {
		t.Error("Expected auto flip to be on")
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr error
	}{
		{"too many nouns", "generate.nouns", 11, ErrCountOutOfRange},
		{"negative verbs", "generate.verbs", -1, ErrCountOutOfRange},
		{"zero columns", "layout.columns", 0, layout.ErrInvalidConfig},
		{"unknown log level", "log.level", "loud", logging.ErrUnknownLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()

			viper.Set(tt.key, tt.value)
			if _, err := LoadSettings(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
