package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/hjiang13/bibtexmate/internal/doi"
)

// Status is the terminal state of one resolution.
type Status string

const (
	StatusResolved    Status = "resolved"
	StatusUnresolved  Status = "unresolved"
	StatusFetchFailed Status = "fetch_failed"
)

// MatchResult is the outcome of resolving one query to a citation.
type MatchResult struct {
	Query      string  `json:"query"`
	DOI        string  `json:"doi,omitempty"`
	Title      string  `json:"title,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	Format     Format  `json:"format"`
	Citation   string  `json:"citation,omitempty"`
	Status     Status  `json:"status"`
	Err        error   `json:"-"`
}

// Resolved reports whether a citation was produced.
func (r MatchResult) Resolved() bool {
	return r.Status == StatusResolved
}

// Error returns the failure message, or "" for a resolved result.
func (r MatchResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Catalog is the subset of Client a Resolver needs.
type Catalog interface {
	Search(ctx context.Context, title string, rows int) ([]Candidate, error)
	Render(ctx context.Context, id string, format Format) (string, error)
}

// Resolver turns titles and DOIs into rendered citations.
type Resolver struct {
	catalog Catalog
	matcher Matcher
}

// NewResolver creates a Resolver. A nil matcher selects fuzzy matching with
// the default threshold.
func NewResolver(c Catalog, m Matcher) *Resolver {
	if m == nil {
		m = NewFuzzyMatcher(DefaultThreshold)
	}
	return &Resolver{catalog: c, matcher: m}
}

// ResolveTitle searches for a title, selects a candidate, and renders it.
// Search failures and rejected candidates are unresolved; a failed render of
// an accepted candidate is fetch_failed.
func (r *Resolver) ResolveTitle(ctx context.Context, query string, format Format) MatchResult {
	res := MatchResult{Query: query, Format: format, Status: StatusUnresolved}

	title := strings.TrimSpace(query)
	if title == "" {
		res.Err = ErrNoAcceptableMatch
		return res
	}

	candidates, err := r.catalog.Search(ctx, title, r.matcher.Rows())
	if err != nil {
		res.Err = err
		return res
	}

	sel, err := r.matcher.Select(title, candidates)
	if err != nil {
		res.Similarity = sel.Similarity
		res.Err = err
		return res
	}
	res.DOI = sel.Candidate.DOI
	res.Title = sel.Candidate.Title
	res.Similarity = sel.Similarity

	return r.render(ctx, res)
}

// ResolveDOI renders a citation for a DOI directly, skipping search.
func (r *Resolver) ResolveDOI(ctx context.Context, id string, format Format) MatchResult {
	res := MatchResult{Query: id, Format: format, DOI: doi.Normalize(id), Similarity: 1}
	if !doi.IsValid(res.DOI) {
		res.Status = StatusFetchFailed
		res.Similarity = 0
		res.Err = fmt.Errorf("%w: malformed DOI %q", ErrNotFound, id)
		return res
	}
	return r.render(ctx, res)
}

func (r *Resolver) render(ctx context.Context, res MatchResult) MatchResult {
	text, err := r.catalog.Render(ctx, res.DOI, res.Format)
	if err != nil {
		res.Status = StatusFetchFailed
		res.Err = err
		return res
	}
	res.Citation = text
	res.Status = StatusResolved
	return res
}
