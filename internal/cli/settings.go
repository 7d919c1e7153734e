package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/layout"
	"codeberg.org/snonux/cardfactory/internal/logging"
	"codeberg.org/snonux/cardfactory/internal/processor"
	"codeberg.org/snonux/cardfactory/internal/sampler"
	"codeberg.org/snonux/cardfactory/internal/storage"
)

// ErrCountOutOfRange is returned for a per-category count outside 0..10
var ErrCountOutOfRange = errors.New("word count out of range")

// countKeys maps each category to its config key
var countKeys = map[card.Category]string{
	card.Noun:      "generate.nouns",
	card.Adjective: "generate.adjectives",
	card.Verb:      "generate.verbs",
	card.Adverb:    "generate.adverbs",
}

// LoadSettings merges defaults, config file, environment and flags into
// the typed session settings
func LoadSettings() (processor.Settings, error) {
	settings := processor.DefaultSettings()

	backend := viper.GetString("storage.backend")
	if backend == "" {
		backend = storage.BackendSQLite
	}
	settings.Storage.Backend = backend
	settings.Storage.Path = viper.GetString("storage.path")
	if settings.Storage.Path == "" {
		switch backend {
		case storage.BackendFile:
			settings.Storage.Path = filepath.Join(storage.DefaultStateDir(), "store")
		default:
			settings.Storage.Path = storage.DefaultConfig().Path
		}
	}
	if viper.IsSet("storage.breaker") {
		settings.Storage.Breaker = viper.GetBool("storage.breaker")
	}

	if dir := viper.GetString("export.directory"); dir != "" {
		settings.ExportDir = dir
	}
	if name := viper.GetString("export.filename"); name != "" {
		settings.ExportFilename = name
	}

	settings.WordBankPath = viper.GetString("wordbank.path")

	if viper.IsSet("layout.columns") || viper.IsSet("layout.rows") {
		settings.Layout = layout.Config{
			Columns: viper.GetInt("layout.columns"),
			Rows:    viper.GetInt("layout.rows"),
		}
	}
	if err := settings.Layout.Validate(); err != nil {
		return settings, err
	}

	counts := make(map[card.Category]int, len(countKeys))
	for category, key := range countKeys {
		n := settings.Generate.Counts[category]
		if viper.IsSet(key) {
			n = viper.GetInt(key)
		}
		if n < 0 || n > sampler.MaxPerCategory {
			return settings, fmt.Errorf("%w: %s must be between 0 and %d, got %d",
				ErrCountOutOfRange, category.Plural(), sampler.MaxPerCategory, n)
		}
		counts[category] = n
	}
	settings.Generate.Counts = counts
	if viper.IsSet("generate.avoid_duplicates") {
		settings.Generate.AvoidDuplicates = viper.GetBool("generate.avoid_duplicates")
	}
	if viper.IsSet("generate.delay") {
		settings.Generate.Delay = viper.GetDuration("generate.delay")
	}

	if level := viper.GetString("log.level"); level != "" {
		if _, err := logging.ParseLevel(level); err != nil {
			return settings, err
		}
		settings.LogLevel = level
	}
	if format := viper.GetString("log.format"); format != "" {
		settings.LogFormat = format
	}
	settings.AutoFlip = viper.GetBool("gui.auto_flip")

	return settings, nil
}
