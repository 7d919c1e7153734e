package processor

import (
	"path/filepath"
	"time"

	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/layout"
	"codeberg.org/snonux/cardfactory/internal/pdf"
	"codeberg.org/snonux/cardfactory/internal/sampler"
	"codeberg.org/snonux/cardfactory/internal/storage"
)

// GenerateSettings holds the defaults of the auto generation screen
type GenerateSettings struct {
	Counts          map[card.Category]int
	AvoidDuplicates bool
	// Delay is the pause before generated cards are shown in the GUI
	Delay time.Duration
}

// Settings is the typed configuration of a session
type Settings struct {
	Storage        storage.Config
	ExportDir      string
	ExportFilename string
	Layout         layout.Config
	WordBankPath   string // empty selects the embedded word bank
	Generate       GenerateSettings
	LogLevel       string
	LogFormat      string
	AutoFlip       bool // GUI preview starts showing the back sides
}

// DefaultSettings returns the settings used without a config file
func DefaultSettings() Settings {
	return Settings{
		Storage:        storage.DefaultConfig(),
		ExportDir:      filepath.Join(storage.DefaultStateDir(), "exports"),
		ExportFilename: pdf.DefaultFilename,
		Layout:         layout.DefaultConfig(),
		Generate: GenerateSettings{
			Counts:          sampler.RecommendedCounts(),
			AvoidDuplicates: true,
			Delay:           1500 * time.Millisecond,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// ExportPath returns where the PDF export is written
func (s Settings) ExportPath() string {
	return filepath.Join(s.ExportDir, s.ExportFilename)
}
