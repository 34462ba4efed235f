// Package extract turns raw document text into locally synthesized
// bibliography entries: locate the references region, split it, extract
// fields, classify, and assign citation keys.
package extract

import (
	"errors"
	"fmt"

	"github.com/hjiang13/bibtexmate/internal/doi"
	"github.com/hjiang13/bibtexmate/internal/export"
	"github.com/hjiang13/bibtexmate/internal/fields"
	"github.com/hjiang13/bibtexmate/internal/reference"
	"github.com/hjiang13/bibtexmate/internal/section"
)

// ErrNoCandidates indicates that a references section was found but yielded
// no usable entries.
var ErrNoCandidates = errors.New("no reference entries found")

// Options controls key assignment.
type Options struct {
	// Index holds keys already in use. Nil means a fresh index per call.
	Index *export.BibTeXIndex
	// LegacyKeys keeps raw author+year+title keys even when they collide.
	LegacyKeys bool
}

// Result is the outcome of extracting one document.
type Result struct {
	Span    section.Span      `json:"span"`
	Entries []reference.Entry `json:"entries"`
}

// Document extracts bibliography entries from text.
// section.ErrNotFound is returned (wrapped) when the document has no
// recognized references heading, ErrNoCandidates when the section is empty.
func Document(text string, opts Options) (*Result, error) {
	span, err := section.Locate(text)
	if err != nil {
		return nil, fmt.Errorf("locating references: %w", err)
	}

	raws := section.Split(span.Body(text))
	if len(raws) == 0 {
		return &Result{Span: span}, ErrNoCandidates
	}

	return &Result{Span: span, Entries: Entries(raws, opts)}, nil
}

// Entries builds one entry per raw reference, in order.
func Entries(raws []string, opts Options) []reference.Entry {
	idx := opts.Index
	if idx == nil {
		idx = export.NewBibTeXIndex()
	}

	entries := make([]reference.Entry, 0, len(raws))
	for _, raw := range raws {
		f := fields.Extract(raw)
		key := export.CiteKey(f)
		if !opts.LegacyKeys {
			key = idx.Unique(key)
		}
		entries = append(entries, reference.Entry{
			Key:     key,
			Type:    export.ClassifyEntry(raw),
			RawText: raw,
			Fields:  f,
			DOI:     doi.Find(raw),
		})
	}
	return entries
}
