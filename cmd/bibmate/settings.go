package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hjiang13/bibtexmate/internal/batch"
	"github.com/hjiang13/bibtexmate/internal/catalog"
	"github.com/hjiang13/bibtexmate/internal/config"
	"github.com/hjiang13/bibtexmate/internal/visits"
)

// mustLoadConfig loads the effective configuration or exits.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config %s: %v", config.GlobalConfigPath(), err)
	}
	return cfg
}

// resolveOptions are the resolution flags shared by several commands.
type resolveOptions struct {
	Format    string
	Exact     bool
	Threshold float64
	Workers   int
}

// formatFor returns the flag format, falling back to the configured one.
func formatFor(flag string, cfg *config.GlobalConfig) (catalog.Format, error) {
	if flag != "" {
		return catalog.ParseFormat(flag)
	}
	return cfg.ParsedFormat()
}

// newCatalogClient builds a catalog client from config.
func newCatalogClient(cfg *config.GlobalConfig) *catalog.Client {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		timeout = catalog.DefaultTimeout
	}
	return catalog.NewClient(
		catalog.WithBaseURL(cfg.CatalogURL),
		catalog.WithResolverURL(cfg.ResolverURL),
		catalog.WithMailto(cfg.Mailto),
		catalog.WithTimeout(timeout),
		catalog.WithRateLimit(cfg.RateLimit),
		catalog.WithLogger(log.Logger),
	)
}

// newMatcher picks the title matching policy.
func newMatcher(opts resolveOptions, cfg *config.GlobalConfig) catalog.Matcher {
	if opts.Exact {
		return catalog.ExactMatcher{}
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = cfg.Threshold
	}
	return catalog.NewFuzzyMatcher(threshold)
}

// newBatchResolver wires the catalog into a batch resolver.
func newBatchResolver(opts resolveOptions, cfg *config.GlobalConfig) *batch.Resolver {
	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	lookup := catalog.NewResolver(newCatalogClient(cfg), newMatcher(opts, cfg))
	return batch.NewResolver(lookup,
		batch.WithWorkers(workers),
		batch.WithLogger(log.Logger),
	)
}

var (
	counterOnce sync.Once
	counter     *visits.Counter
)

// visitCounter returns the process-wide visit counter.
func visitCounter(path string) *visits.Counter {
	counterOnce.Do(func() {
		counter = visits.NewCounter(path)
	})
	return counter
}

// recordVisit bumps the visit counter. Failures are logged and ignored.
func recordVisit(ctx context.Context, cfg *config.GlobalConfig) {
	n, err := visitCounter(cfg.VisitsDB).Increment(ctx)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.VisitsDB).Msg("visit counter unavailable")
		return
	}
	log.Debug().Int64("visits", n).Msg("visit recorded")
}

// readLines returns the lines of r with surrounding whitespace trimmed.
// Blank lines are kept so callers see the input as given.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// readQueryFile reads one query per line from path, or stdin for "-".
func readQueryFile(path string) ([]string, error) {
	if path == "-" {
		return readLines(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readLines(f)
}
