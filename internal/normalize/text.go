// Package normalize turns noisy listing markup text into clean scalar values.
// A nil result means "no value"; the empty string is never returned.
package normalize

import "strings"

// CleanText collapses every whitespace run to a single space and trims the
// ends. It returns nil when nothing but whitespace remains.
func CleanText(s string) *string {
	text := strings.Join(strings.Fields(s), " ")
	if text == "" {
		return nil
	}
	return &text
}

// ParsePhone cleans a phone number. No reformatting is attempted.
func ParsePhone(s string) *string {
	return CleanText(s)
}
