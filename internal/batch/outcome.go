package batch

import (
	"fmt"
	"strings"

	"github.com/hjiang13/bibtexmate/internal/catalog"
)

// Entry is one aggregated result, keyed by its literal query.
type Entry struct {
	Query  string              `json:"query"`
	Kind   Kind                `json:"kind"`
	Text   string              `json:"text"`
	Result catalog.MatchResult `json:"result"`
	Error  string              `json:"error,omitempty"`
}

// Outcome maps each distinct query to its entry in first-seen order.
type Outcome struct {
	BatchID string         `json:"batch_id"`
	Format  catalog.Format `json:"format"`
	Entries []Entry        `json:"entries"`

	index map[string]int
}

func newOutcome(batchID string, format catalog.Format) *Outcome {
	return &Outcome{BatchID: batchID, Format: format, index: make(map[string]int)}
}

// NotFoundMarker is the text recorded for a query that produced no citation.
func NotFoundMarker(format catalog.Format, query string) string {
	return fmt.Sprintf("No %s entry found for: %s", format, query)
}

// add records a result. A repeated query overwrites the earlier value but
// keeps its original position.
func (o *Outcome) add(item Item, res catalog.MatchResult) {
	entry := Entry{Query: item.Query, Kind: item.Kind, Result: res}
	if res.Resolved() {
		entry.Text = res.Citation
	} else {
		entry.Text = NotFoundMarker(o.Format, item.Query)
		entry.Error = res.Error()
	}

	if idx, ok := o.index[item.Query]; ok {
		o.Entries[idx] = entry
		return
	}
	o.index[item.Query] = len(o.Entries)
	o.Entries = append(o.Entries, entry)
}

// Get returns the entry for a literal query.
func (o *Outcome) Get(query string) (Entry, bool) {
	idx, ok := o.index[query]
	if !ok {
		return Entry{}, false
	}
	return o.Entries[idx], true
}

// Len returns the number of distinct queries.
func (o *Outcome) Len() int {
	return len(o.Entries)
}

// Resolved returns the number of entries with a citation.
func (o *Outcome) Resolved() int {
	n := 0
	for _, e := range o.Entries {
		if e.Result.Resolved() {
			n++
		}
	}
	return n
}

// Failed returns the number of entries without a citation.
func (o *Outcome) Failed() int {
	return o.Len() - o.Resolved()
}

// Text renders the downloadable artifact: every resolved citation in
// order, separated by a blank line. Unresolved queries are omitted.
func (o *Outcome) Text() string {
	var parts []string
	for _, e := range o.Entries {
		if e.Result.Resolved() {
			parts = append(parts, e.Text)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
