// Package cli provides command-line interface setup and configuration
// for the cardfactory application. It handles flag parsing, command
// creation and configuration management using cobra and viper, and maps
// every subcommand onto a processor session.
package cli
