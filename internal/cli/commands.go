package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"codeberg.org/snonux/cardfactory/internal/anki"
	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/gui"
	"codeberg.org/snonux/cardfactory/internal/layout"
	"codeberg.org/snonux/cardfactory/internal/logging"
	"codeberg.org/snonux/cardfactory/internal/preview"
	"codeberg.org/snonux/cardfactory/internal/processor"
	"codeberg.org/snonux/cardfactory/internal/sampler"
)

var (
	// ErrEmptyPatch is returned by edit when no field flag was given
	ErrEmptyPatch = errors.New("nothing to change, pass at least one of --word, --definition, --example, --category or --level")
	// ErrConfirmationRequired is returned when a destructive command cannot prompt
	ErrConfirmationRequired = errors.New("confirmation required, pass --yes")
	// ErrUnknownFormat is returned by export for an unsupported --format
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrUnknownSide is returned by preview for an unsupported --side
	ErrUnknownSide = errors.New("unknown side")
)

func addCommands(root *cobra.Command, flags *Flags) {
	root.AddCommand(
		newGenerateCommand(flags),
		newAddCommand(flags),
		newListCommand(),
		newEditCommand(),
		newRemoveCommand(),
		newRegenerateCommand(),
		newClearCommand(),
		newExportCommand(flags),
		newSetsCommand(flags),
		newImportCommand(),
		newArchiveCommand(),
		newPreviewCommand(flags),
		newGUICommand(flags),
	)
}

// openSession loads the settings and opens a session that reports to the
// command output
func openSession(cmd *cobra.Command) (*processor.Session, error) {
	settings, logger, err := loadRuntime(cmd)
	if err != nil {
		return nil, err
	}

	return processor.Open(cmd.Context(), settings,
		processor.WithLogger(logger),
		processor.WithNotifier(processor.WriterNotifier{W: cmd.OutOrStdout()}),
	)
}

func loadRuntime(cmd *cobra.Command) (processor.Settings, *slog.Logger, error) {
	settings, err := LoadSettings()
	if err != nil {
		return settings, nil, err
	}
	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return settings, nil, err
	}
	return settings, logging.New(cmd.ErrOrStderr(), level, settings.LogFormat), nil
}

// withSession opens a session, runs fn and closes the session again
func withSession(cmd *cobra.Command, fn func(*processor.Session) error) error {
	session, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer session.Close()

	return fn(session)
}

func runGUI(cmd *cobra.Command) error {
	settings, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	app := gui.New(settings, logger)
	return app.Run(cmd.Context())
}

func newGenerateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Replace the working deck with words sampled from the word bank",
		Long: `Sample a new working deck from the word bank. Each category takes
between 0 and 10 words. With --avoid-duplicates (the default) words that
already appear in a saved set are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				settings := s.Settings()
				counts := settings.Generate.Counts
				if flags.Recommended {
					counts = sampler.RecommendedCounts()
				}

				if _, err := s.Generate(cmd.Context(), counts, settings.Generate.AvoidDuplicates); err != nil {
					return fmt.Errorf("failed to generate flashcards: %w", err)
				}
				return writeCards(cmd.OutOrStdout(), s.Cards())
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.Nouns, "nouns", flags.Nouns, "Number of nouns (0-10)")
	f.IntVar(&flags.Adjectives, "adjectives", flags.Adjectives, "Number of adjectives (0-10)")
	f.IntVar(&flags.Verbs, "verbs", flags.Verbs, "Number of verbs (0-10)")
	f.IntVar(&flags.Adverbs, "adverbs", flags.Adverbs, "Number of adverbs (0-10)")
	f.BoolVar(&flags.Recommended, "recommended", false, "Use the recommended mix of 3 nouns, 3 adjectives, 2 verbs and 2 adverbs")
	f.BoolVar(&flags.AvoidDuplicates, "avoid-duplicates", flags.AvoidDuplicates, "Skip words that appear in saved sets")

	viper.BindPFlag("generate.nouns", f.Lookup("nouns"))
	viper.BindPFlag("generate.adjectives", f.Lookup("adjectives"))
	viper.BindPFlag("generate.verbs", f.Lookup("verbs"))
	viper.BindPFlag("generate.adverbs", f.Lookup("adverbs"))
	viper.BindPFlag("generate.avoid_duplicates", f.Lookup("avoid-duplicates"))

	return cmd
}

func newAddCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add WORD DEFINITION",
		Short: "Add a card to the working deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := card.ParseCategory(flags.Category)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *processor.Session) error {
				added, err := s.Add(cmd.Context(), card.Card{
					Word:       args[0],
					Definition: args[1],
					Example:    flags.Example,
					Category:   category,
					Level:      card.Level(flags.Level),
				})
				if err != nil {
					return fmt.Errorf("failed to add card: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), added.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Example, "example", "", "Example sentence")
	f.StringVar(&flags.Category, "category", flags.Category, "Category: noun, adjective, verb or adverb")
	f.StringVar(&flags.Level, "level", flags.Level, "Difficulty label: easy, medium, hard, very hard or any text")

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cards of the working deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				out := cmd.OutOrStdout()
				if s.Len() == 0 {
					fmt.Fprintln(out, "No flashcards yet")
					return nil
				}
				if err := writeCards(out, s.Cards()); err != nil {
					return err
				}

				stats := s.Stats()
				parts := make([]string, 0, len(card.AllCategories))
				for _, category := range card.AllCategories {
					parts = append(parts, fmt.Sprintf("%d %s", stats[category], category.Plural()))
				}
				fmt.Fprintf(out, "\n%d cards, %d pages (%s)\n", s.Len(), len(s.Pages()), strings.Join(parts, ", "))
				return nil
			})
		},
	}
}

// writeCards prints one aligned row per card
func writeCards(w io.Writer, cards []card.Card) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORD\tCATEGORY\tLEVEL\tDEFINITION")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Word, c.Category, c.Level, c.Definition)
	}
	return tw.Flush()
}

// editFlags holds the edit values apart from Flags so the defaults of add
// are not overwritten when the edit flags are registered
type editFlags struct {
	word       string
	definition string
	example    string
	category   string
	level      string
}

func newEditCommand() *cobra.Command {
	values := &editFlags{}
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a card in the working deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := buildPatch(cmd, values)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *processor.Session) error {
				if _, err := s.Edit(cmd.Context(), args[0], patch); err != nil {
					return fmt.Errorf("failed to edit card: %w", err)
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&values.word, "word", "", "New word")
	f.StringVar(&values.definition, "definition", "", "New definition")
	f.StringVar(&values.example, "example", "", "New example sentence, empty clears it")
	f.StringVar(&values.category, "category", "", "New category")
	f.StringVar(&values.level, "level", "", "New difficulty label")

	return cmd
}

// buildPatch turns the explicitly given edit flags into a patch
func buildPatch(cmd *cobra.Command, values *editFlags) (card.Patch, error) {
	var patch card.Patch
	changed := cmd.Flags().Changed

	if changed("word") {
		patch.Word = &values.word
	}
	if changed("definition") {
		patch.Definition = &values.definition
	}
	if changed("example") {
		patch.Example = &values.example
	}
	if changed("category") {
		category, err := card.ParseCategory(values.category)
		if err != nil {
			return patch, err
		}
		patch.Category = &category
	}
	if changed("level") {
		level := card.Level(values.level)
		patch.Level = &level
	}

	if patch.IsEmpty() {
		return patch, ErrEmptyPatch
	}
	return patch, nil
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a card from the working deck",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				return s.Remove(cmd.Context(), args[0])
			})
		},
	}
}

func newRegenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate ID",
		Short: "Replace a card with another word of the same category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				replaced, err := s.Regenerate(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to regenerate card: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), replaced.ID)
				return nil
			})
		},
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every card from the working deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				return s.Clear(cmd.Context())
			})
		},
	}
}

func newExportCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the working deck as a duplex PDF or for Anki",
		Long: `Export the working deck.

  pdf   double-sided sheets, fronts and mirrored backs on alternating pages
  csv   Anki import file
  apkg  Anki package`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				return runExport(cmd, s, flags)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Format, "format", flags.Format, "Export format: pdf, csv or apkg")
	f.StringVarP(&flags.Output, "output", "o", "", "Output file (default in the export directory)")
	f.StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for apkg exports")

	return cmd
}

func runExport(cmd *cobra.Command, s *processor.Session, flags *Flags) error {
	exportDir := s.Settings().ExportDir
	out := cmd.OutOrStdout()

	switch strings.ToLower(flags.Format) {
	case "pdf":
		var (
			path string
			err  error
		)
		if flags.Output == "" {
			path, err = s.ExportPDF(cmd.Context())
		} else {
			path, err = s.ExportPDFTo(cmd.Context(), flags.Output)
		}
		if err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
		fmt.Fprintln(out, path)
	case "csv":
		path := outputPath(flags.Output, exportDir, anki.DefaultGeneratorOptions().OutputPath)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		if err := s.ExportCSV(path); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
	case "apkg":
		path := outputPath(flags.Output, exportDir, sanitizeDeckName(flags.DeckName)+".apkg")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		if err := s.ExportAPKG(path, flags.DeckName); err != nil {
			return fmt.Errorf("failed to export Anki package: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, flags.Format)
	}
	return nil
}

func outputPath(output, dir, name string) string {
	if output != "" {
		return output
	}
	return filepath.Join(dir, name)
}

// sanitizeDeckName makes a deck name usable as a file name
func sanitizeDeckName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "cardfactory"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}

func newSetsCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Save, list, load and delete named flashcard sets",
	}

	save := &cobra.Command{
		Use:   "save NAME",
		Short: "Save the working deck as a named set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				return s.SaveSet(cmd.Context(), args[0])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				sets, err := s.ListSets(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sets) == 0 {
					fmt.Fprintln(out, "No saved sets")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tCARDS")
				for _, set := range sets {
					fmt.Fprintf(tw, "%s\t%d\n", set.Name, len(set.Cards))
				}
				return tw.Flush()
			})
		},
	}

	load := &cobra.Command{
		Use:   "load NAME",
		Short: "Replace the working deck with a saved set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				_, err := s.LoadSet(cmd.Context(), args[0])
				return err
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete every saved set with this name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.Yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete set %q?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}
			return withSession(cmd, func(s *processor.Session) error {
				return s.DeleteSet(cmd.Context(), args[0])
			})
		},
	}
	del.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Delete without asking")

	cmd.AddCommand(save, list, load, del)
	return cmd
}

// confirm asks a yes/no question on the command input. Standard input is
// only read when it is a terminal.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, ErrConfirmationRequired
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append cards from a batch file",
		Long: `Append cards from a batch file with one card per line:

  word = definition | example | category | level

Everything after the definition is optional. A line with only a word is
completed from the word bank. Empty lines and lines starting with # are
ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				_, err := s.Import(cmd.Context(), args[0])
				return err
			})
		},
	}
}

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move saved sets and the working deck aside and start fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *processor.Session) error {
				_, err := s.Archive(cmd.Context())
				return err
			})
		},
	}
}

func newPreviewCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the printed pages of the working deck in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sides, err := parseSides(flags.Side)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *processor.Session) error {
				if s.Len() == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No flashcards yet")
					return nil
				}
				return preview.Write(cmd.OutOrStdout(), s.Pages(), preview.Options{Sides: sides})
			})
		},
	}

	cmd.Flags().StringVar(&flags.Side, "side", flags.Side, "Side to show: front, back or both")
	return cmd
}

func parseSides(side string) ([]layout.Side, error) {
	switch strings.ToLower(side) {
	case "front":
		return []layout.Side{layout.Front}, nil
	case "back":
		return []layout.Side{layout.Back}, nil
	case "both", "":
		return []layout.Side{layout.Front, layout.Back}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
}

func newGUICommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Launch the desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.AutoFlip, "auto-flip", false, "Start the preview showing the back sides")
	f.DurationVar(&flags.Delay, "delay", flags.Delay, "Pause before generated cards are shown")

	viper.BindPFlag("gui.auto_flip", f.Lookup("auto-flip"))
	viper.BindPFlag("generate.delay", f.Lookup("delay"))

	return cmd
}
