// Package export classifies extracted references and renders them as BibTeX.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hjiang13/bibtexmate/internal/fields"
	"github.com/hjiang13/bibtexmate/internal/reference"
)

// ClassifyEntry returns the BibTeX entry type for a raw reference.
// Rules are case-insensitive substring checks and the first match wins.
func ClassifyEntry(raw string) reference.EntryType {
	lower := strings.ToLower(raw)

	// Anything carrying a DOI is treated as a journal article
	if strings.Contains(lower, "doi") {
		return reference.Article
	}

	// Conference proceedings
	if strings.Contains(lower, "conference") ||
		strings.Contains(lower, "proceedings") {
		return reference.InProceedings
	}

	if strings.Contains(lower, "book") {
		return reference.Book
	}

	return reference.Misc
}

// CiteKey builds a citation key from extracted fields as
// author + year + first title word, e.g. "Smith2020Deep".
// Not unique: BibTeXIndex.Unique disambiguates collisions.
func CiteKey(f reference.Fields) string {
	title, ok := fields.FirstWord(f.TitleFragment)
	if !ok {
		title = reference.UnknownTitle
	}
	return sanitizeForCiteKey(f.FirstAuthor) + sanitizeForCiteKey(f.Year) + sanitizeForCiteKey(title)
}

// sanitizeForCiteKey removes non-alphanumeric characters.
func sanitizeForCiteKey(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToBibTeX converts an extracted entry to BibTeX format. The raw reference
// text is kept verbatim in the note field; author and year are only written
// when they were actually extracted.
func ToBibTeX(e reference.Entry) string {
	entryType := e.Type
	if entryType == "" {
		entryType = reference.Misc
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, e.Key))

	if e.Fields.FirstAuthor != "" && e.Fields.FirstAuthor != reference.UnknownAuthor {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", escapeLatex(e.Fields.FirstAuthor)))
	}

	if e.Fields.Year != "" && e.Fields.Year != reference.NoDate {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", e.Fields.Year))
	}

	// DOI (optional)
	if e.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", e.DOI))
	}

	b.WriteString(fmt.Sprintf("  note = {%s}\n", escapeLatex(e.RawText)))
	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple entries to BibTeX format.
func ToBibTeXList(entries []reference.Entry) string {
	var out []string
	for _, e := range entries {
		out = append(out, ToBibTeX(e))
	}
	return strings.Join(out, "\n")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Single pass: replacements are never re-escaped.
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
