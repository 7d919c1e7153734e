package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cardfactory/internal"
)

// CreateRootCommand creates the root cobra command with every subcommand.
// Running it without a subcommand opens the desktop window.
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardfactory",
		Short: "Printable double-sided vocabulary flashcards",
		Long: `cardfactory creates vocabulary flashcards and exports them as a PDF
ready for double-sided printing.

Cards are entered by hand or sampled from the built-in ISEE word bank.
The working deck is kept between runs, and named sets can be saved and
loaded again later.

Examples:
  cardfactory                                   # Launch the desktop window (default)
  cardfactory generate --recommended            # 3 nouns, 3 adjectives, 2 verbs, 2 adverbs
  cardfactory add candid "truthful and frank" --category adjective
  cardfactory preview --side back               # Show the mirrored back sides
  cardfactory export                            # Write flashcards-double-sided.pdf`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd)
		},
	}

	setupFlags(rootCmd, flags)
	addCommands(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.cardfactory.yaml)")
	pf.StringVar(&flags.StorageBackend, "storage", flags.StorageBackend, "Storage backend: sqlite, file or memory")
	pf.StringVar(&flags.StatePath, "state-path", "", "Database file (sqlite) or directory (file) holding sets and the session")
	pf.StringVar(&flags.ExportDir, "export-dir", "", "Directory for exported files (default ~/.local/state/cardfactory/exports)")
	pf.StringVar(&flags.WordBankPath, "word-bank", "", "YAML word bank to use instead of the built-in ISEE list")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")
	pf.IntVar(&flags.Columns, "columns", flags.Columns, "Card columns per printed page")
	pf.IntVar(&flags.Rows, "rows", flags.Rows, "Card rows per printed page")

	bindFlagsToViper(pf)
}

func bindFlagsToViper(pf *pflag.FlagSet) {
	viper.BindPFlag("storage.backend", pf.Lookup("storage"))
	viper.BindPFlag("storage.path", pf.Lookup("state-path"))
	viper.BindPFlag("export.directory", pf.Lookup("export-dir"))
	viper.BindPFlag("wordbank.path", pf.Lookup("word-bank"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("layout.columns", pf.Lookup("columns"))
	viper.BindPFlag("layout.rows", pf.Lookup("rows"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search for ".cardfactory.yaml" in the home and working directory
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cardfactory")
	}

	// CARDFACTORY_STORAGE_BACKEND sets storage.backend
	viper.SetEnvPrefix("CARDFACTORY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
