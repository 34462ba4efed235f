package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(visitsCmd)
}

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Show how many times bibmate has processed input",
	Args:  cobra.NoArgs,
	RunE:  runVisits,
}

// VisitsResponse is the JSON output for the visits command.
type VisitsResponse struct {
	Visits int64  `json:"visits"`
	Path   string `json:"path"`
}

func runVisits(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	n, err := visitCounter(cfg.VisitsDB).Count(context.Background())
	if err != nil {
		exitWithError(ExitError, "reading visit counter: %v", err)
	}

	if humanOutput {
		outputHuman("%d visits (%s)\n", n, cfg.VisitsDB)
	} else {
		outputJSON(VisitsResponse{Visits: n, Path: cfg.VisitsDB})
	}
	return nil
}
