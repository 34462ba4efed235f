package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hjiang13/bibtexmate/internal/batch"
	"github.com/hjiang13/bibtexmate/internal/export"
	"github.com/hjiang13/bibtexmate/internal/extract"
	"github.com/hjiang13/bibtexmate/internal/pdf"
	"github.com/hjiang13/bibtexmate/internal/reference"
	"github.com/hjiang13/bibtexmate/internal/section"
)

var (
	extractBibtex     bool
	extractResolve    bool
	extractExisting   string
	extractAppend     string
	extractLegacyKeys bool
	extractOut        string
	extractOpts       resolveOptions
)

func init() {
	extractCmd.Flags().BoolVar(&extractBibtex, "bibtex", false, "Print locally generated BibTeX instead of JSON")
	extractCmd.Flags().BoolVar(&extractResolve, "resolve", false, "Resolve every entry against the catalog")
	extractCmd.Flags().StringVar(&extractExisting, "existing", "", "Existing .bib file whose keys and DOIs are already taken")
	extractCmd.Flags().StringVar(&extractAppend, "append", "", "Append generated BibTeX to this .bib file, skipping known DOIs")
	extractCmd.Flags().BoolVar(&extractLegacyKeys, "legacy-keys", false, "Keep colliding citation keys instead of adding -2, -3 suffixes")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "With --resolve, write resolved citations to this file")
	addResolveFlags(extractCmd, &extractOpts)
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract reference entries from a paper",
	Long: `Extract reference entries from a paper.

The file may be a PDF or plain text (- reads stdin). The references section
is located by heading, split into entries, and each entry gets an author,
year, title fragment, entry type, and citation key.

Examples:
  bibmate extract paper.pdf
  bibmate extract paper.pdf --bibtex > refs.bib
  bibmate extract paper.pdf --append refs.bib
  bibmate extract paper.txt --resolve --format vancouver --human`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractResponse is the JSON output for the extract command.
type ExtractResponse struct {
	Span       section.Span      `json:"span"`
	Bounded    bool              `json:"bounded"`
	Entries    []reference.Entry `json:"entries"`
	Total      int               `json:"total"`
	Skipped    int               `json:"skipped,omitempty"`
	AppendedTo string            `json:"appended_to,omitempty"`
	Resolution *batch.Outcome    `json:"resolution,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	text, err := readDocument(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	idx, err := loadKeyIndex(extractExisting, extractAppend)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	recordVisit(ctx, cfg)

	res, err := extract.Document(text, extract.Options{Index: idx, LegacyKeys: extractLegacyKeys})
	switch {
	case errors.Is(err, section.ErrNotFound):
		exitWithError(ExitSectionNotFound, "references section not found in %s", args[0])
	case errors.Is(err, extract.ErrNoCandidates):
		exitWithError(ExitDataError, "references section found but no entries could be extracted")
	case err != nil:
		exitWithError(ExitError, "%v", err)
	}

	entries, skipped := res.Entries, 0
	if extractExisting != "" || extractAppend != "" {
		entries, skipped = dropKnown(res.Entries, idx)
	}
	resp := ExtractResponse{
		Span:    res.Span,
		Bounded: res.Span.Bounded(),
		Entries: entries,
		Total:   len(entries),
		Skipped: skipped,
	}

	if extractAppend != "" && len(entries) > 0 {
		if err := export.AppendToBibFile(extractAppend, export.ToBibTeXList(entries)); err != nil {
			exitWithError(ExitError, "appending to %s: %v", extractAppend, err)
		}
		resp.AppendedTo = extractAppend
	}

	if extractResolve {
		format, err := formatFor(extractOpts.Format, cfg)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		resp.Resolution = resolveBatch(ctx, cfg, extractOpts, batch.Request{
			References: rawTexts(entries),
			Format:     format,
		})
		if extractOut != "" {
			if err := writeArtifact(extractOut, resp.Resolution); err != nil {
				exitWithError(ExitError, "%v", err)
			}
		}
	}

	switch {
	case extractBibtex:
		// BibTeX is always text output, never JSON
		fmt.Print(export.ToBibTeXList(entries))
	case humanOutput:
		printExtractHuman(resp)
	default:
		outputJSON(resp)
	}
	return nil
}

// readDocument reads a PDF or text file, or stdin for "-".
func readDocument(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return pdf.ReadDocument(path)
}

// loadKeyIndex merges the keys and DOIs of the given .bib files.
// Nonexistent files contribute nothing.
func loadKeyIndex(paths ...string) (*export.BibTeXIndex, error) {
	idx := export.NewBibTeXIndex()
	for _, path := range paths {
		if path == "" {
			continue
		}
		other, err := export.ParseBibTeXFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for key := range other.Keys {
			idx.Keys[key] = true
		}
		for id, key := range other.DOIs {
			idx.DOIs[id] = key
		}
	}
	return idx, nil
}

// dropKnown removes entries whose DOI is already in idx. Entries repeating
// a DOI within the document are all kept.
func dropKnown(entries []reference.Entry, idx *export.BibTeXIndex) ([]reference.Entry, int) {
	kept := make([]reference.Entry, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if e.DOI != "" && idx.HasEntry("", e.DOI) {
			skipped++
			continue
		}
		kept = append(kept, e)
	}
	return kept, skipped
}

func rawTexts(entries []reference.Entry) []string {
	raws := make([]string, len(entries))
	for i, e := range entries {
		raws[i] = e.RawText
	}
	return raws
}

func printExtractHuman(resp ExtractResponse) {
	end := "end of document"
	if resp.Bounded {
		end = fmt.Sprintf("offset %d", resp.Span.End)
	}
	outputHuman("References at offset %d to %s: %d entries", resp.Span.Start, end, resp.Total)
	if resp.Skipped > 0 {
		outputHuman(" (%d already known)", resp.Skipped)
	}
	outputHuman("\n\n")

	for i, e := range resp.Entries {
		outputHuman("%d. %s [%s]\n", i+1, e.Key, e.Type)
		outputHuman("   %s\n", truncateString(e.RawText, ListRawMaxLen))
	}

	if resp.AppendedTo != "" {
		outputHuman("\nAppended %d entries to %s\n", resp.Total, resp.AppendedTo)
	}
	if resp.Resolution != nil {
		outputHuman("\n")
		printOutcomeHuman(resp.Resolution)
	}
}
