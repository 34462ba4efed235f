// Package catalog is a client for a remote bibliographic catalog (Crossref
// search plus DOI content negotiation) with title matching and citation
// rendering.
package catalog

import "github.com/hjiang13/bibtexmate/internal/reference"

// Candidate is one work returned by a title search.
type Candidate struct {
	DOI   string `json:"doi"`
	Title string `json:"title"`
}

// WorkReference is one entry of a work's reference list.
type WorkReference struct {
	Key          string             `json:"key,omitempty"`
	DOI          string             `json:"doi,omitempty"`
	ArticleTitle string             `json:"article_title,omitempty"`
	VolumeTitle  string             `json:"volume_title,omitempty"`
	JournalTitle string             `json:"journal_title,omitempty"`
	Authors      []reference.Author `json:"authors,omitempty"`
	Year         string             `json:"year,omitempty"`
	Unstructured string             `json:"unstructured,omitempty"`
}

// Title returns the best available title of the referenced work.
func (w WorkReference) Title() string {
	switch {
	case w.ArticleTitle != "":
		return w.ArticleTitle
	case w.VolumeTitle != "":
		return w.VolumeTitle
	default:
		return w.Unstructured
	}
}

// searchResponse is the Crossref /works search envelope.
type searchResponse struct {
	Message struct {
		Items []struct {
			DOI   string   `json:"DOI"`
			Title []string `json:"title"`
		} `json:"items"`
	} `json:"message"`
}

// workResponse is the Crossref /works/{doi} envelope, reduced to references.
type workResponse struct {
	Message struct {
		DOI       string `json:"DOI"`
		Reference []struct {
			Key          string `json:"key"`
			DOI          string `json:"DOI"`
			ArticleTitle string `json:"article-title"`
			VolumeTitle  string `json:"volume-title"`
			JournalTitle string `json:"journal-title"`
			Author       string `json:"author"`
			Year         string `json:"year"`
			Unstructured string `json:"unstructured"`
		} `json:"reference"`
	} `json:"message"`
}
