package section

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinLength is the length a candidate must exceed to count as a reference.
// Shorter fragments are stray headings or page numbers.
const MinLength = 10

// entryMarker matches a line that opens a new entry: "12. ", "[12] ", "(12) ",
// or a dash bullet. Numbers are capped at three digits so a wrapped line that
// starts with a year is not mistaken for a new entry.
var entryMarker = regexp.MustCompile(`(?m)^[ \t]*(?:\d{1,3}\.|\[\d{1,3}\]|\(\d{1,3}\)|[-•])[ \t]+`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Split breaks the body of a references region into raw reference strings.
//
// When entry markers are present the text is cut at each marker and wrapped
// lines within an entry are joined. Without markers every line is a
// candidate. Candidates are trimmed and anything not longer than MinLength is
// dropped. Source order is preserved and duplicates are kept.
func Split(body string) []string {
	var candidates []string
	if locs := entryMarker.FindAllStringIndex(body, -1); len(locs) > 0 {
		candidates = splitAtMarkers(body, locs)
	} else {
		candidates = strings.Split(body, "\n")
	}

	refs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(whitespaceRun.ReplaceAllString(c, " "))
		if utf8.RuneCountInString(c) > MinLength {
			refs = append(refs, c)
		}
	}
	return refs
}

// splitAtMarkers cuts body at each marker location, dropping the marker itself.
// Text before the first marker is kept as its own candidate.
func splitAtMarkers(body string, locs [][]int) []string {
	parts := make([]string, 0, len(locs)+1)
	parts = append(parts, body[:locs[0][0]])
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		parts = append(parts, body[loc[1]:end])
	}
	return parts
}
