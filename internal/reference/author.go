package reference

import "strings"

// Author represents a work author as reported by the catalog.
type Author struct {
	First string `json:"first,omitempty"` // Given name(s)
	Last  string `json:"last"`            // Family name
	ORCID string `json:"orcid,omitempty"` // ORCID identifier (without URL prefix)
}

// FullName formats the author as "First Last".
func (a Author) FullName() string {
	return strings.TrimSpace(a.First + " " + a.Last)
}
