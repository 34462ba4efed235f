package catalog

import (
	"fmt"
	"strings"
)

// Format is a citation rendering requested from the catalog.
type Format int

const (
	BibTeX Format = iota
	RIS
	Vancouver
	MLA
)

// negotiation maps a Format onto its content-negotiation parameters.
type negotiation struct {
	name      string
	mediaType string
	style     string // CSL style, only for text/x-bibliography
	aliases   []string
}

var formatParams = map[Format]negotiation{
	BibTeX:    {name: "BibTeX", mediaType: "application/x-bibtex", aliases: []string{"bibtex", "bib"}},
	RIS:       {name: "RIS", mediaType: "application/x-research-info-systems", aliases: []string{"ris"}},
	Vancouver: {name: "Vancouver", mediaType: "text/x-bibliography", style: "vancouver", aliases: []string{"vancouver"}},
	MLA:       {name: "MLA", mediaType: "text/x-bibliography", style: "modern-language-association", aliases: []string{"mla"}},
}

// Formats returns all supported formats in display order.
func Formats() []Format {
	return []Format{BibTeX, RIS, Vancouver, MLA}
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats() {
		for _, alias := range formatParams[f].aliases {
			if s == alias {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q (valid: bibtex, ris, vancouver, mla)", ErrUnsupportedFormat, s)
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	_, ok := formatParams[f]
	return ok
}

func (f Format) String() string {
	if p, ok := formatParams[f]; ok {
		return p.name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// MediaType returns the negotiated media type.
func (f Format) MediaType() string {
	return formatParams[f].mediaType
}

// Style returns the CSL style for plain-text bibliographies, or "".
func (f Format) Style() string {
	return formatParams[f].style
}

// Accept returns the Accept header value used to request this format.
func (f Format) Accept() string {
	p := formatParams[f]
	if p.style != "" {
		return p.mediaType + "; style=" + p.style
	}
	return p.mediaType
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return []byte(strings.ToLower(f.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
