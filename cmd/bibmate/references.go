package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hjiang13/bibtexmate/internal/batch"
	"github.com/hjiang13/bibtexmate/internal/catalog"
	"github.com/hjiang13/bibtexmate/internal/doi"
)

var (
	referencesRender bool
	referencesLimit  int
	referencesOpts   resolveOptions
)

func init() {
	referencesCmd.Flags().BoolVar(&referencesRender, "render", false, "Render every referenced work that has a DOI")
	referencesCmd.Flags().IntVarP(&referencesLimit, "limit", "n", 0, "Maximum references to show (0 for all)")
	addResolveFlags(referencesCmd, &referencesOpts)
	rootCmd.AddCommand(referencesCmd)
}

var referencesCmd = &cobra.Command{
	Use:   "references <doi>",
	Short: "List the works a paper cites",
	Long: `List the works a paper cites, as recorded by Crossref.

Examples:
  bibmate references 10.48550/arXiv.1706.03762
  bibmate references 10.1093/sysbio/syy032 --render --format bibtex --human`,
	Args: cobra.ExactArgs(1),
	RunE: runReferences,
}

// ReferencesResponse is the JSON output for the references command.
type ReferencesResponse struct {
	DOI        string                  `json:"doi"`
	References []catalog.WorkReference `json:"references"`
	Total      int                     `json:"total"`
	WithDOI    int                     `json:"with_doi"`
	Rendered   *batch.Outcome          `json:"rendered,omitempty"`
}

func runReferences(cmd *cobra.Command, args []string) error {
	id := doi.Normalize(args[0])
	if !doi.IsValid(id) {
		exitWithError(ExitError, "not a DOI: %s", args[0])
	}

	cfg := mustLoadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	recordVisit(ctx, cfg)

	refs, err := newCatalogClient(cfg).References(ctx, id)
	if err != nil {
		if catalog.IsNotFound(err) {
			exitWithError(ExitCatalogError, "work not found: %s", id)
		}
		exitWithError(ExitCatalogError, "fetching references: %v", err)
	}
	if referencesLimit > 0 && len(refs) > referencesLimit {
		refs = refs[:referencesLimit]
	}

	resp := ReferencesResponse{DOI: id, References: refs, Total: len(refs)}
	var dois []string
	for _, r := range refs {
		if r.DOI != "" {
			dois = append(dois, r.DOI)
		}
	}
	resp.WithDOI = len(dois)

	if referencesRender && len(dois) > 0 {
		format, err := formatFor(referencesOpts.Format, cfg)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		resp.Rendered = resolveBatch(ctx, cfg, referencesOpts, batch.Request{DOIs: dois, Format: format})
	}

	if humanOutput {
		printReferencesHuman(resp)
	} else {
		outputJSON(resp)
	}
	return nil
}

func printReferencesHuman(resp ReferencesResponse) {
	outputHuman("%s cites %d works (%d with DOI)\n\n", resp.DOI, resp.Total, resp.WithDOI)
	for i, r := range resp.References {
		title := r.Title()
		if title == "" {
			title = "(untitled)"
		}
		outputHuman("%d. %s\n", i+1, truncateString(title, RefTitleMaxLen))
		if r.DOI != "" {
			outputHuman("   DOI: %s\n", r.DOI)
		}
		if r.Year != "" {
			outputHuman("   Year: %s\n", r.Year)
		}
	}
	if resp.Rendered != nil {
		outputHuman("\n")
		printOutcomeHuman(resp.Rendered)
	}
}
