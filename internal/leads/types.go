// Package leads defines the records produced by a directory search.
package leads

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Column names used for JSON keys and CSV headers.
const (
	ColumnBusinessName   = "business_name"
	ColumnCategory       = "category"
	ColumnAddress        = "address"
	ColumnCity           = "city"
	ColumnState          = "state"
	ColumnZipCode        = "zip_code"
	ColumnPhoneNumber    = "phone_number"
	ColumnEmail          = "email"
	ColumnWebsite        = "website"
	ColumnRating         = "rating"
	ColumnSearchKeyword  = "_search_keyword"
	ColumnSearchLocation = "_search_location"
)

// Lead is one normalized business listing. Optional fields are nil when the
// listing did not carry them and serialize as JSON null.
type Lead struct {
	BusinessName string   `json:"business_name"`
	Category     *string  `json:"category"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	ZipCode      *string  `json:"zip_code"`
	PhoneNumber  *string  `json:"phone_number"`
	Email        *string  `json:"email"`
	Website      *string  `json:"website"`
	Rating       *float64 `json:"rating"`

	// Provenance, attached by the batch runner only.
	SearchKeyword  *string `json:"_search_keyword,omitempty"`
	SearchLocation *string `json:"_search_location,omitempty"`
}

// SearchQuery is one (keyword, location) search over a number of result pages.
type SearchQuery struct {
	Keyword  string `json:"keyword"`
	Location string `json:"location"`
	Pages    int    `json:"pages"`
}

// leadJSON mirrors Lead with the rating pre-rendered, so whole ratings are
// written as 4.0 in JSON the same way they appear in CSV.
type leadJSON struct {
	BusinessName   string          `json:"business_name"`
	Category       *string         `json:"category"`
	Address        *string         `json:"address"`
	City           *string         `json:"city"`
	State          *string         `json:"state"`
	ZipCode        *string         `json:"zip_code"`
	PhoneNumber    *string         `json:"phone_number"`
	Email          *string         `json:"email"`
	Website        *string         `json:"website"`
	Rating         json.RawMessage `json:"rating"`
	SearchKeyword  *string         `json:"_search_keyword,omitempty"`
	SearchLocation *string         `json:"_search_location,omitempty"`
}

// MarshalJSON writes the lead with a fixed key order. Non-finite ratings are
// written as null. HTML characters are not escaped.
func (l Lead) MarshalJSON() ([]byte, error) {
	rating := json.RawMessage("null")
	if l.Rating != nil && !math.IsNaN(*l.Rating) && !math.IsInf(*l.Rating, 0) {
		rating = json.RawMessage(formatRating(*l.Rating))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(leadJSON{
		BusinessName:   l.BusinessName,
		Category:       l.Category,
		Address:        l.Address,
		City:           l.City,
		State:          l.State,
		ZipCode:        l.ZipCode,
		PhoneNumber:    l.PhoneNumber,
		Email:          l.Email,
		Website:        l.Website,
		Rating:         rating,
		SearchKeyword:  l.SearchKeyword,
		SearchLocation: l.SearchLocation,
	}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WithProvenance returns a copy of the lead annotated with the originating
// search. Values already present are kept.
func (l Lead) WithProvenance(keyword, location string) Lead {
	if l.SearchKeyword == nil {
		l.SearchKeyword = &keyword
	}
	if l.SearchLocation == nil {
		l.SearchLocation = &location
	}
	return l
}

// Columns lists the keys present on the lead, sorted lexicographically.
func (l Lead) Columns() []string {
	cols := []string{
		ColumnBusinessName,
		ColumnCategory,
		ColumnAddress,
		ColumnCity,
		ColumnState,
		ColumnZipCode,
		ColumnPhoneNumber,
		ColumnEmail,
		ColumnWebsite,
		ColumnRating,
	}
	if l.SearchKeyword != nil {
		cols = append(cols, ColumnSearchKeyword)
	}
	if l.SearchLocation != nil {
		cols = append(cols, ColumnSearchLocation)
	}
	sort.Strings(cols)
	return cols
}

// Value renders the named column as text. Unset values and unknown columns
// render as the empty string.
func (l Lead) Value(column string) string {
	switch column {
	case ColumnBusinessName:
		return l.BusinessName
	case ColumnCategory:
		return deref(l.Category)
	case ColumnAddress:
		return deref(l.Address)
	case ColumnCity:
		return deref(l.City)
	case ColumnState:
		return deref(l.State)
	case ColumnZipCode:
		return deref(l.ZipCode)
	case ColumnPhoneNumber:
		return deref(l.PhoneNumber)
	case ColumnEmail:
		return deref(l.Email)
	case ColumnWebsite:
		return deref(l.Website)
	case ColumnRating:
		if l.Rating == nil {
			return ""
		}
		return formatRating(*l.Rating)
	case ColumnSearchKeyword:
		return deref(l.SearchKeyword)
	case ColumnSearchLocation:
		return deref(l.SearchLocation)
	default:
		return ""
	}
}

// formatRating keeps a trailing ".0" on whole numbers so 4 reads as "4.0".
func formatRating(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'I' || r == 'N' {
			return s
		}
	}
	return s + ".0"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
