package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/hjiang13/bibtexmate/internal/doi"
)

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// Match DOI field: doi = {value} or doi = "value"
	doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibTeXIndex tracks citation keys and DOIs already in use, so new entries
// get unique keys and known works can be skipped.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps normalized DOI values to citation keys
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *BibTeXIndex) HasEntry(key, id string) bool {
	if id != "" {
		if _, exists := idx.DOIs[doi.Normalize(id)]; exists {
			return true
		}
	}
	return idx.Keys[key]
}

// Unique returns base if it is unused, otherwise the first free base-N
// suffix starting at 2. The returned key is recorded as taken.
func (idx *BibTeXIndex) Unique(base string) string {
	key := base
	// Start at 2: base is taken, so first duplicate becomes base-2
	for i := 2; idx.Keys[key]; i++ {
		key = fmt.Sprintf("%s-%d", base, i)
	}
	idx.Keys[key] = true
	return key
}

// Add records a key and, when present, its DOI.
func (idx *BibTeXIndex) Add(key, id string) {
	idx.Keys[key] = true
	if id != "" {
		idx.DOIs[doi.Normalize(id)] = key
	}
}

// ParseBibTeX builds an index from BibTeX text.
func ParseBibTeX(r io.Reader) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()
	scanner := bufio.NewScanner(r)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			id := doi.Normalize(matches[1])
			if id != "" && currentKey != "" {
				idx.DOIs[id] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewBibTeXIndex(), nil
		}
		return nil, err
	}
	defer file.Close()

	return ParseBibTeX(file)
}

// AppendToBibFile appends BibTeX content to a file.
func AppendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	// Ensure we start on a new line
	_, err = file.WriteString("\n" + content)
	return err
}
