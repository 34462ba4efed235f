package catalog

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"bibtex", BibTeX},
		{"BIB", BibTeX},
		{" ris ", RIS},
		{"Vancouver", Vancouver},
		{"mla", MLA},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("apa"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(apa) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormat_TextRoundTrip(t *testing.T) {
	for _, f := range Formats() {
		text, err := f.MarshalText()
		if err != nil {
			t.Fatalf("%v.MarshalText() error = %v", f, err)
		}
		var back Format
		if err := back.UnmarshalText(text); err != nil || back != f {
			t.Errorf("round trip %v -> %q -> %v (%v)", f, text, back, err)
		}
	}
	if Format(9).Valid() {
		t.Error("Format(9).Valid() = true")
	}
}
