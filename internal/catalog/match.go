package catalog

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultThreshold is the similarity a fuzzy match must exceed.
	DefaultThreshold = 0.8

	// FuzzyRows is the number of candidates requested per fuzzy search.
	FuzzyRows = 10
)

// Selection is the candidate a Matcher chose and its score.
type Selection struct {
	Candidate  Candidate
	Similarity float64
}

// Matcher picks a search candidate for a query title.
type Matcher interface {
	// Rows returns the number of candidates to request per search.
	Rows() int
	// Select returns the accepted candidate or ErrNoAcceptableMatch.
	Select(query string, candidates []Candidate) (Selection, error)
}

// NormalizeTitle folds case and compatibility forms and collapses whitespace.
func NormalizeTitle(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns a ratio in [0,1] between two titles, computed on
// normalized runes with the Ratcliff/Obershelp algorithm. Two empty titles
// share nothing and score 0.
func Similarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	m := difflib.NewMatcherWithJunk(runes(na), runes(nb), false, nil)
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ExactMatcher asks for a single candidate and accepts it only when its
// normalized title equals the query.
type ExactMatcher struct{}

func (ExactMatcher) Rows() int { return 1 }

func (ExactMatcher) Select(query string, candidates []Candidate) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, fmt.Errorf("%w: catalog returned no candidates", ErrNoAcceptableMatch)
	}
	top := candidates[0]
	if NormalizeTitle(top.Title) != NormalizeTitle(query) {
		return Selection{Candidate: top, Similarity: Similarity(query, top.Title)},
			fmt.Errorf("%w: top candidate %q differs from query", ErrNoAcceptableMatch, top.Title)
	}
	return Selection{Candidate: top, Similarity: 1}, nil
}

// FuzzyMatcher scores every candidate and accepts the best one when its
// similarity strictly exceeds Threshold. Ties keep the earliest candidate.
type FuzzyMatcher struct {
	Threshold float64
	MaxRows   int
}

// NewFuzzyMatcher returns a FuzzyMatcher with the default rows and the
// given threshold, or DefaultThreshold when threshold is not in (0,1).
// Acceptance is strict, so a threshold of 1 could never accept anything.
func NewFuzzyMatcher(threshold float64) FuzzyMatcher {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return FuzzyMatcher{Threshold: threshold, MaxRows: FuzzyRows}
}

func (m FuzzyMatcher) Rows() int {
	if m.MaxRows <= 0 {
		return FuzzyRows
	}
	return m.MaxRows
}

func (m FuzzyMatcher) Select(query string, candidates []Candidate) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, fmt.Errorf("%w: catalog returned no candidates", ErrNoAcceptableMatch)
	}

	best := Selection{Similarity: -1}
	for _, c := range candidates {
		if score := Similarity(query, c.Title); score > best.Similarity {
			best = Selection{Candidate: c, Similarity: score}
		}
	}

	if best.Similarity <= m.Threshold {
		return best, fmt.Errorf("%w: best similarity %.2f does not exceed %.2f",
			ErrNoAcceptableMatch, best.Similarity, m.Threshold)
	}
	return best, nil
}
