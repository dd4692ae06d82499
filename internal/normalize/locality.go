package normalize

import "strings"

// Locality is the city/state/zip triple carried by a "City, ST 12345" string.
type Locality struct {
	City    *string
	State   *string
	ZipCode *string
}

// ParseLocality splits a locality string on its first comma. The part before
// the comma is the city; the first two whitespace tokens after it are the
// state and the zip code. Without a comma the whole string is the remainder
// and the city stays unset. Further tokens are ignored.
func ParseLocality(s string) Locality {
	var loc Locality
	text := CleanText(s)
	if text == nil {
		return loc
	}

	rest := text
	if cityPart, remainder, found := strings.Cut(*text, ","); found {
		loc.City = CleanText(cityPart)
		rest = CleanText(remainder)
	}
	if rest == nil {
		return loc
	}

	parts := strings.Fields(*rest)
	if len(parts) >= 1 {
		loc.State = &parts[0]
	}
	if len(parts) >= 2 {
		loc.ZipCode = &parts[1]
	}
	return loc
}
