package scraper

import (
	"net/url"
	"strconv"
	"strings"
)

// BuildSearchURL returns the results URL for one page of a search. The page
// parameter is only present from page 2 on.
func BuildSearchURL(baseURL, keyword, location string, page int) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/search?search_terms=")
	b.WriteString(url.QueryEscape(strings.TrimSpace(keyword)))
	b.WriteString("&geo_location_terms=")
	b.WriteString(url.QueryEscape(strings.TrimSpace(location)))
	if page > 1 {
		b.WriteString("&page=")
		b.WriteString(strconv.Itoa(page))
	}
	return b.String()
}
