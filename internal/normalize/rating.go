package normalize

import (
	"math"
	"strconv"
	"strings"
)

// RatingAttr is the attribute that carries a structured rating value.
const RatingAttr = "data-rating"

// RatingSource is a markup node a rating can be read from.
// *goquery.Selection satisfies it.
type RatingSource interface {
	Attr(name string) (string, bool)
	Text() string
}

// ParseRating reads the RatingAttr attribute first and falls back to the
// first whitespace-separated token of the node text that parses as a number.
// It returns nil when neither yields a value.
func ParseRating(src RatingSource) *float64 {
	if src == nil {
		return nil
	}

	if raw, ok := src.Attr(RatingAttr); ok && raw != "" {
		if v, ok := parseNumber(raw); ok {
			return &v
		}
	}

	text := CleanText(src.Text())
	if text == nil {
		return nil
	}
	for _, token := range strings.Fields(*text) {
		if v, ok := parseNumber(token); ok {
			return &v
		}
	}
	return nil
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(strings.TrimLeft(raw, "+-"))
	// strconv accepts hex floats, digit separators, NaN and Inf; none of them is a rating.
	if strings.HasPrefix(lower, "0x") || strings.Contains(raw, "_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
