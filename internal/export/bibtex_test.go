package export

import (
	"strings"
	"testing"

	"github.com/hjiang13/bibtexmate/internal/reference"
)

func TestClassifyEntry(t *testing.T) {
	tests := []struct {
		raw  string
		want reference.EntryType
	}{
		{"doi:10.1/x", reference.Article},
		{"Smith, J. Paper. DOI 10.1000/abc. Proceedings of X.", reference.Article}, // doi outranks proceedings
		{"In Proceedings of NeurIPS 2017", reference.InProceedings},
		{"in PROCEEDINGS of the thing", reference.InProceedings},
		{"International Conference on Machine Learning", reference.InProceedings},
		{"Conference book of abstracts", reference.InProceedings}, // conference outranks book
		{"A handbook of methods", reference.Book},
		{"Some Web Page, accessed 2020", reference.Misc},
		{"", reference.Misc},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ClassifyEntry(tt.raw); got != tt.want {
				t.Errorf("ClassifyEntry(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCiteKey(t *testing.T) {
	tests := []struct {
		name   string
		fields reference.Fields
		want   string
	}{
		{
			name:   "full fields",
			fields: reference.Fields{FirstAuthor: "Smith", Year: "2020", TitleFragment: "Deep"},
			want:   "Smith2020Deep",
		},
		{
			name:   "quoted title uses first word",
			fields: reference.Fields{FirstAuthor: "Vaswani", Year: "2017", TitleFragment: "Attention Is All You Need"},
			want:   "Vaswani2017Attention",
		},
		{
			name:   "defaults",
			fields: reference.DefaultFields(),
			want:   "UnknownndUnknown",
		},
		{
			name:   "punctuation stripped",
			fields: reference.Fields{FirstAuthor: "O'Neil", Year: "1999", TitleFragment: "Gradient-based learning"},
			want:   "ONeil1999Gradientbased",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CiteKey(tt.fields); got != tt.want {
				t.Errorf("CiteKey(%+v) = %q, want %q", tt.fields, got, tt.want)
			}
		})
	}
}

func TestToBibTeX_Extracted(t *testing.T) {
	e := reference.Entry{
		Key:     "Smith2020Deep",
		Type:    reference.Article,
		RawText: "Smith, J. (2020). Deep nets & 100% fun. doi:10.1000/xyz1",
		Fields:  reference.Fields{FirstAuthor: "Smith", Year: "2020", TitleFragment: "Deep"},
		DOI:     "10.1000/xyz1",
	}

	got := ToBibTeX(e)

	if !strings.HasPrefix(got, "@article{Smith2020Deep,\n") {
		t.Errorf("ToBibTeX() should start with @article{Smith2020Deep, got:\n%s", got)
	}
	if !strings.Contains(got, "author = {Smith}") {
		t.Errorf("ToBibTeX() should contain author, got:\n%s", got)
	}
	if !strings.Contains(got, "year = {2020}") {
		t.Errorf("ToBibTeX() should contain year, got:\n%s", got)
	}
	if !strings.Contains(got, "doi = {10.1000/xyz1}") {
		t.Errorf("ToBibTeX() should contain DOI, got:\n%s", got)
	}
	if !strings.Contains(got, `note = {Smith, J. (2020). Deep nets \& 100\% fun. doi:10.1000/xyz1}`) {
		t.Errorf("ToBibTeX() should contain escaped raw note, got:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), "}") {
		t.Errorf("ToBibTeX() should end with }, got:\n%s", got)
	}
}

func TestToBibTeX_DefaultsOmitted(t *testing.T) {
	e := reference.Entry{
		Key:     "UnknownndUnknown",
		RawText: "an unparseable reference string",
		Fields:  reference.DefaultFields(),
	}

	got := ToBibTeX(e)

	if !strings.HasPrefix(got, "@misc{UnknownndUnknown,") {
		t.Errorf("ToBibTeX() with empty type should default to @misc, got:\n%s", got)
	}
	if strings.Contains(got, "author =") || strings.Contains(got, "year =") || strings.Contains(got, "doi =") {
		t.Errorf("ToBibTeX() should omit defaulted fields, got:\n%s", got)
	}
}

func TestToBibTeXList(t *testing.T) {
	entries := []reference.Entry{
		{Key: "A2020One", Type: reference.Misc, RawText: "first reference text"},
		{Key: "B2021Two", Type: reference.Book, RawText: "second reference text"},
	}

	got := ToBibTeXList(entries)

	first := strings.Index(got, "@misc{A2020One,")
	second := strings.Index(got, "@book{B2021Two,")
	if first < 0 || second < 0 || first > second {
		t.Errorf("ToBibTeXList() should contain both entries in order, got:\n%s", got)
	}
	if !strings.Contains(got, "}\n\n@book") {
		t.Errorf("ToBibTeXList() should separate entries by a blank line, got:\n%s", got)
	}
}

func TestToBibTeXList_Empty(t *testing.T) {
	if got := ToBibTeXList(nil); got != "" {
		t.Errorf("ToBibTeXList(nil) = %q, want empty", got)
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"100% effective", `100\% effective`},
		{"A & B", `A \& B`},
		{"$100 price", `\$100 price`},
		{"section #1", `section \#1`},
		{"under_score", `under\_score`},
		{"{braces}", `\{braces\}`},
		{"test~tilde", `test\textasciitilde{}tilde`},
		{"x^2", `x\textasciicircum{}2`},
		{`a\}`, `a\textbackslash{}\}`},
		{`C:\path`, `C:\textbackslash{}path`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeLatex(tt.input)
			if got != tt.want {
				t.Errorf("escapeLatex(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
