package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile        string
	StorageBackend string
	StatePath      string
	ExportDir      string
	WordBankPath   string
	LogLevel       string
	LogFormat      string
	Columns        int
	Rows           int

	// generate
	Nouns           int
	Adjectives      int
	Verbs           int
	Adverbs         int
	Recommended     bool
	AvoidDuplicates bool

	// add
	Example  string
	Category string
	Level    string

	// export
	Format   string
	Output   string
	DeckName string

	// preview
	Side string

	// sets delete
	Yes bool

	// gui
	AutoFlip bool
	Delay    time.Duration
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		StorageBackend:  "sqlite",
		LogLevel:        "warn",
		LogFormat:       "text",
		Columns:         2,
		Rows:            4,
		Nouns:           3,
		Adjectives:      3,
		Verbs:           2,
		Adverbs:         2,
		AvoidDuplicates: true,
		Category:        "noun",
		Level:           "medium",
		Format:          "pdf",
		DeckName:        "cardfactory",
		Side:            "both",
		Delay:           1500 * time.Millisecond,
	}
}
