package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hjiang13/bibtexmate/internal/config"
)

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  bibmate config                        # Show effective config
  bibmate config workers                # Get specific value
  bibmate config mailto me@example.org  # Set value in the config file
  bibmate config path                   # Show config file location

Keys:
  mailto        Contact address sent to Crossref
  catalog-url   Catalog API base URL
  resolver-url  DOI resolver URL
  timeout       Per-request timeout (e.g. 10s)
  workers       Concurrent lookups per batch
  threshold     Fuzzy title match threshold, below 1
  format        Default citation format (bibtex, ris, vancouver, mla)
  visits-db     Visit counter database path
  rate-limit    Catalog requests per second

Environment variables BIBMATE_<KEY> override the file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GlobalConfigPath()
		if humanOutput {
			outputHuman("%s\n", path)
		} else {
			outputJSON(StatusResponse{Status: "ok", Path: path})
		}
		return nil
	},
}

// normalizeKey accepts both catalog-url and catalog_url.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 2 {
		return setConfigValue(normalizeKey(args[0]), args[1])
	}

	cfg := mustLoadConfig()

	if len(args) == 0 {
		values := cfg.Values()
		if humanOutput {
			for _, key := range config.Keys() {
				outputHuman("%-13s %s\n", key+":", values[key])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := normalizeKey(args[0])
	value, err := cfg.Get(key)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if humanOutput {
		outputHuman("%s\n", value)
	} else {
		outputJSON(map[string]string{key: value})
	}
	return nil
}

// setConfigValue writes one key to the config file, leaving other file
// values untouched and env overrides out of it.
func setConfigValue(key, value string) error {
	path := config.GlobalConfigPath()
	if path == "" {
		exitWithError(ExitConfigError, "cannot determine config directory")
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := config.SaveGlobalConfig(path, cfg); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	config.ResetGlobalConfigCache()

	if humanOutput {
		outputHuman("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
