// Package main provides the bibmate CLI entry point.
package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// verboseOutput enables debug logging
	verboseOutput bool
)

func main() {
	defer guard()
	if err := rootCmd.Execute(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibmate",
	Short: "Extract references from papers and resolve them to citations",
	Long: `bibmate finds the references section of a paper, splits it into entries,
and turns titles, DOIs, or raw references into BibTeX, RIS, Vancouver, or MLA
citations using Crossref.

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine
		_ = godotenv.Load()
		setupLogging(verboseOutput)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verboseOutput, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// guard turns a panic anywhere in a command into a generic error.
func guard() {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Msg("command failed unexpectedly")
		exitWithError(ExitError, "internal error, try again")
	}
}
