// Package doi finds, validates, and normalizes Digital Object Identifiers.
package doi

import (
	"regexp"
	"strings"
)

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// exactPattern matches a string that is nothing but a DOI, optionally prefixed.
var exactPattern = regexp.MustCompile(`(?i)^(?:doi:\s*|https?://(?:dx\.)?doi\.org/|doi\.org/)?10\.\d{4,9}/\S+$`)

// Find returns the first valid DOI in text, or "" when none is present.
func Find(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation picked up from the surrounding sentence
		match = strings.TrimRight(match, ".,;:)")
		if IsValid(match) {
			return match
		}
	}
	return ""
}

// IsValid performs basic validation on a DOI.
func IsValid(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	// Must start with 10. and have something after the /
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}

// Looks reports whether query is a bare DOI (or DOI URL) rather than free text.
func Looks(query string) bool {
	return exactPattern.MatchString(strings.TrimSpace(query))
}

// Normalize strips common URL and scheme prefixes from a DOI and lowercases it.
// DOIs are case-insensitive, so the result is suitable for comparison.
func Normalize(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			lower = strings.TrimSpace(lower[len(prefix):])
			break
		}
	}
	return lower
}
