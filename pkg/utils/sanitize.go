package utils

import (
	"html"
	"strings"
)

// EscapeSQLWildcards escapes LIKE wildcard characters in user input.
func EscapeSQLWildcards(input string) string {
	input = strings.ReplaceAll(input, "\\", "\\\\")
	input = strings.ReplaceAll(input, "%", "\\%")
	input = strings.ReplaceAll(input, "_", "\\_")
	return input
}

// SanitizeSearchQuery prepares a search term for LIKE matching: trimmed,
// capped at 100 chars, wildcards escaped, wrapped with % on both sides.
func SanitizeSearchQuery(input string) string {
	input = strings.TrimSpace(input)
	if len(input) > 100 {
		input = input[:100]
	}
	return "%" + EscapeSQLWildcards(input) + "%"
}

// SanitizeHTML escapes HTML entities in user-generated text.
func SanitizeHTML(input string) string {
	return html.EscapeString(input)
}
