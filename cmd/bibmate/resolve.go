package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hjiang13/bibtexmate/internal/batch"
	"github.com/hjiang13/bibtexmate/internal/catalog"
	"github.com/hjiang13/bibtexmate/internal/clipboard"
	"github.com/hjiang13/bibtexmate/internal/config"
)

var (
	resolveFile string
	resolveDOIs []string
	resolveOut  string
	resolveCopy bool
	resolveOpts resolveOptions
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveFile, "file", "f", "", "Read titles from a file, one per line (- for stdin)")
	resolveCmd.Flags().StringArrayVar(&resolveDOIs, "doi", nil, "DOI to render directly (repeatable)")
	resolveCmd.Flags().StringVarP(&resolveOut, "out", "o", "", "Write resolved citations to this file")
	resolveCmd.Flags().BoolVar(&resolveCopy, "copy", false, "Copy resolved citations to the clipboard")
	addResolveFlags(resolveCmd, &resolveOpts)
	rootCmd.AddCommand(resolveCmd)
}

// addResolveFlags registers the flags shared by every resolving command.
func addResolveFlags(cmd *cobra.Command, opts *resolveOptions) {
	cmd.Flags().StringVar(&opts.Format, "format", "", "Citation format: bibtex, ris, vancouver, mla (default from config)")
	cmd.Flags().BoolVar(&opts.Exact, "exact", false, "Accept only an exact title match on the top result")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Fuzzy match threshold in (0,1); use --exact for exact matching (default from config)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Concurrent lookups (default from config)")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [title...]",
	Short: "Resolve titles or DOIs to formatted citations",
	Long: `Resolve titles or DOIs to formatted citations.

Titles are searched in Crossref and the best match above the similarity
threshold is rendered. DOIs are rendered directly. Items that cannot be
resolved get a "No <format> entry found" marker; the rest of the batch
still completes.

Examples:
  bibmate resolve "Attention Is All You Need"
  bibmate resolve --file titles.txt --format ris --out refs.ris
  bibmate resolve --doi 10.48550/arXiv.1706.03762 --format mla --human
  bibmate resolve "Deep Residual Learning for Image Recognition" --copy`,
	RunE: runResolve,
}

// ResolveResponse is the JSON output for the resolve command.
type ResolveResponse struct {
	*batch.Outcome
	Resolved int    `json:"resolved"`
	Failed   int    `json:"failed"`
	OutFile  string `json:"out_file,omitempty"`
	Copied   bool   `json:"copied,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	titles := append([]string(nil), args...)
	if resolveFile != "" {
		lines, err := readQueryFile(resolveFile)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		titles = append(titles, lines...)
	}

	format, err := formatFor(resolveOpts.Format, cfg)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	req := batch.Request{Titles: titles, DOIs: resolveDOIs, Format: format}
	if len(req.Items()) == 0 {
		exitWithError(ExitError, "no titles or DOIs given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	recordVisit(ctx, cfg)
	out := resolveBatch(ctx, cfg, resolveOpts, req)

	if resolveOut != "" {
		if err := writeArtifact(resolveOut, out); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	copied := false
	if resolveCopy && out.Resolved() > 0 {
		if err := clipboard.Copy(ctx, out.Text()); err != nil {
			log.Warn().Err(err).Msg("could not copy citations to clipboard")
		} else {
			copied = true
		}
	}

	if humanOutput {
		printOutcomeHuman(out)
	} else {
		outputJSON(ResolveResponse{
			Outcome:  out,
			Resolved: out.Resolved(),
			Failed:   out.Failed(),
			OutFile:  resolveOut,
			Copied:   copied,
		})
	}

	if out.Resolved() == 0 {
		os.Exit(ExitCatalogError)
	}
	return nil
}

// resolveBatch runs one batch with settings from flags and config.
func resolveBatch(ctx context.Context, cfg *config.GlobalConfig, opts resolveOptions, req batch.Request) *batch.Outcome {
	return newBatchResolver(opts, cfg).Resolve(ctx, req)
}

// writeArtifact writes the resolved citations of a batch to path.
func writeArtifact(path string, out *batch.Outcome) error {
	if err := os.WriteFile(path, []byte(out.Text()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// printOutcomeHuman prints each entry's citation or marker, blank-line separated.
func printOutcomeHuman(out *batch.Outcome) {
	for i, e := range out.Entries {
		if i > 0 {
			outputHuman("\n")
		}
		outputHuman("%s\n", e.Text)
		if e.Result.Status == catalog.StatusResolved && e.Result.Similarity > 0 && e.Kind != batch.KindDOI {
			fmt.Fprintf(os.Stderr, "  matched %s (similarity %.2f)\n", e.Result.DOI, e.Result.Similarity)
		}
	}
	fmt.Fprintf(os.Stderr, "\nResolved %d of %d (%s)\n", out.Resolved(), out.Len(), out.Format)
}
