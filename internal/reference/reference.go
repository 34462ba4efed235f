// Package reference defines the core domain types for bibliography entries
// pulled out of document text and for works returned by the catalog.
package reference

// Defaults used when a field cannot be extracted from a raw reference.
const (
	UnknownAuthor = "Unknown"
	NoDate        = "n.d."
	UnknownTitle  = "Unknown"
)

// EntryType is the coarse bibliographic category of an entry.
type EntryType string

const (
	Article       EntryType = "article"
	InProceedings EntryType = "inproceedings"
	Book          EntryType = "book"
	Misc          EntryType = "misc"
)

// Fields holds the heuristically extracted parts of one raw reference.
// Each field falls back to its default independently of the others.
type Fields struct {
	FirstAuthor   string `json:"first_author"`
	Year          string `json:"year"`
	TitleFragment string `json:"title_fragment"`
}

// DefaultFields returns Fields with every value set to its default.
func DefaultFields() Fields {
	return Fields{
		FirstAuthor:   UnknownAuthor,
		Year:          NoDate,
		TitleFragment: UnknownTitle,
	}
}

// IsDefault reports whether no field could be extracted.
func (f Fields) IsDefault() bool {
	return f == DefaultFields()
}

// Entry is one bibliography entry synthesized locally from document text.
type Entry struct {
	Key     string    `json:"key"`
	Type    EntryType `json:"entry_type"`
	RawText string    `json:"raw_text"`
	Fields  Fields    `json:"fields"`
	DOI     string    `json:"doi,omitempty"` // DOI found inside RawText, if any
}
