// Package section finds the references region of a document and splits it
// into individual raw reference strings.
package section

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNotFound indicates that no recognized references heading exists in the text.
var ErrNotFound = errors.New("references section not found")

// StartHeadings are the headings that open a references region, in priority order.
var StartHeadings = []string{"References", "Bibliography", "Works Cited", "Literature Cited"}

// EndHeadings are the headings that close a references region, in priority order.
var EndHeadings = []string{"Appendix", "Author Biographies", "About the Authors"}

var (
	startPatterns = compileHeadings(StartHeadings)
	endPatterns   = compileHeadings(EndHeadings)
)

// Span is a byte offset range into document text covering the references region.
type Span struct {
	Start      int `json:"start"`       // Offset of the start heading
	HeadingEnd int `json:"heading_end"` // Offset just past the start heading
	End        int `json:"end"`         // Offset of the end heading, or -1 for end of document
}

// Bounded reports whether an end heading closed the span.
func (s Span) Bounded() bool {
	return s.End >= 0
}

// Text returns the whole region, heading included.
func (s Span) Text(doc string) string {
	return doc[s.Start:s.end(doc)]
}

// Body returns the region without its start heading.
func (s Span) Body(doc string) string {
	return doc[s.HeadingEnd:s.end(doc)]
}

func (s Span) end(doc string) int {
	if s.End < 0 {
		return len(doc)
	}
	return s.End
}

// Locate finds the references region in doc.
//
// Start headings are tried in priority order and the first heading type with
// any match wins, even if a lower-priority heading occurs earlier in the text.
// End headings are searched from the end of the start heading onward, again in
// priority order. ErrNotFound is returned when no start heading matches.
func Locate(doc string) (Span, error) {
	start, headingEnd, ok := firstMatch(startPatterns, doc, 0)
	if !ok {
		return Span{}, ErrNotFound
	}

	span := Span{Start: start, HeadingEnd: headingEnd, End: -1}
	if end, _, ok := firstMatch(endPatterns, doc, headingEnd); ok {
		span.End = end
	}
	return span, nil
}

// firstMatch returns the location of the first pattern (by priority) that
// matches doc at or after offset.
func firstMatch(patterns []*regexp.Regexp, doc string, offset int) (int, int, bool) {
	tail := doc[offset:]
	for _, p := range patterns {
		if loc := p.FindStringIndex(tail); loc != nil {
			return offset + loc[0], offset + loc[1], true
		}
	}
	return 0, 0, false
}

// compileHeadings builds case-insensitive whole-word patterns. Interior
// spaces match any run of whitespace so headings wrapped by PDF extraction
// still match.
func compileHeadings(headings []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(headings))
	for i, h := range headings {
		words := strings.Fields(h)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		patterns[i] = regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
	}
	return patterns
}
