// Package fields derives author, year, and title fragments from a raw
// reference string using ordered lists of heuristic rules.
//
// Extraction is best-effort. Each field is resolved independently, and a
// reference for which every rule fails still yields a complete Fields value
// made of defaults.
package fields

import (
	"regexp"
	"strings"

	"github.com/hjiang13/bibtexmate/internal/reference"
)

// Rule is a named extraction heuristic. Match returns the extracted value and
// true, or false when the rule does not apply.
type Rule struct {
	Name  string
	Match func(raw string) (string, bool)
}

var (
	// Surname followed by a comma and a capital initial: "Smith, J."
	surnameInitialRe = regexp.MustCompile(`(\p{Lu}[\p{L}'’-]+),\s*\p{Lu}\.`)

	// First 19xx/20xx token, optionally followed by a disambiguating letter (2020a).
	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})[a-z]?\b`)

	// Text inside curly or straight double quotes.
	quotedRe = regexp.MustCompile(`[“"]([^”"]+)[”"]`)

	// Capitalized word(s), a year, then the sentence that follows it.
	afterYearRe = regexp.MustCompile(`\p{Lu}[\p{L}'’-]*(?:[\s,.&]+\p{Lu}[\p{L}'’-]*\.?)*[\s,.(]*(?:19|20)\d{2}[a-z]?\)?[.,:]?\s+([^.]+)\.`)
)

// AuthorRules extract the first author's surname.
var AuthorRules = []Rule{
	{Name: "surname-initial", Match: submatch(surnameInitialRe)},
}

// YearRules extract the publication year.
var YearRules = []Rule{
	{Name: "four-digit-year", Match: submatch(yearRe)},
}

// TitleRules extract a title fragment. A quoted title wins; the fallback only
// keeps the first word of the sentence after the year.
var TitleRules = []Rule{
	{Name: "quoted", Match: quotedTitle},
	{Name: "sentence-after-year", Match: firstWordAfterYear},
}

// SearchTitleRules extract the whole title-bearing text of a reference, for
// catalog lookups where a single word is too little to match on.
var SearchTitleRules = []Rule{
	{Name: "quoted", Match: quotedTitle},
	{Name: "sentence-after-year", Match: sentenceAfterYear},
}

// SearchTitle returns the quoted title of raw, or the full sentence after
// its year. It reports false when neither is present.
func SearchTitle(raw string) (string, bool) {
	title := Apply(SearchTitleRules, raw, "")
	return title, title != ""
}

// Extract applies every rule list to raw and returns the resulting fields.
func Extract(raw string) reference.Fields {
	return reference.Fields{
		FirstAuthor:   Apply(AuthorRules, raw, reference.UnknownAuthor),
		Year:          Apply(YearRules, raw, reference.NoDate),
		TitleFragment: Apply(TitleRules, raw, reference.UnknownTitle),
	}
}

// Apply runs rules in order and returns the first successful value, or
// fallback when none match.
func Apply(rules []Rule, raw, fallback string) string {
	for _, r := range rules {
		if v, ok := r.Match(raw); ok {
			return v
		}
	}
	return fallback
}

// submatch returns a rule function yielding the first capture group of re.
func submatch(re *regexp.Regexp) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		m := re.FindStringSubmatch(raw)
		if m == nil || m[1] == "" {
			return "", false
		}
		return m[1], true
	}
}

func quotedTitle(raw string) (string, bool) {
	m := quotedRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	title := strings.TrimRight(strings.TrimSpace(m[1]), ".,;:")
	if title == "" {
		return "", false
	}
	return title, true
}

func firstWordAfterYear(raw string) (string, bool) {
	sentence, ok := sentenceAfterYear(raw)
	if !ok {
		return "", false
	}
	return FirstWord(sentence)
}

func sentenceAfterYear(raw string) (string, bool) {
	m := afterYearRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	sentence := strings.TrimSpace(m[1])
	return sentence, sentence != ""
}

// FirstWord returns the first whitespace-separated word of s with
// surrounding punctuation removed.
func FirstWord(s string) (string, bool) {
	for _, w := range strings.Fields(s) {
		w = strings.Trim(w, `.,;:()[]{}"“”'‘’`)
		if w != "" {
			return w, true
		}
	}
	return "", false
}
