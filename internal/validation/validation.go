package validation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrSearchTextTooLong is returned when search text exceeds the maximum length.
var ErrSearchTextTooLong = errors.New("search text too long")

// ErrSearchTextInvalidChars is returned when search text contains control characters or invalid UTF-8.
var ErrSearchTextInvalidChars = errors.New("search text contains invalid characters")

// ErrSuggestionIDEmpty is returned when a selection carries no suggestion id.
var ErrSuggestionIDEmpty = errors.New("suggestion id is required")

// ErrSuggestionIDTooLong is returned when a suggestion id exceeds MaxSuggestionIDLength.
var ErrSuggestionIDTooLong = errors.New("suggestion id too long")

// MaxSuggestionIDLength bounds suggestion ids accepted from clients.
const MaxSuggestionIDLength = 256

// ValidateSearchText checks one keystroke's worth of search box text. Empty and
// whitespace-only text is valid (it clears suggestions). maxLen counts runes;
// zero disables the bound. The text is returned unchanged: the raw text is
// what the user typed, trimming is left to the controller.
func ValidateSearchText(input string, maxLen int) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrSearchTextInvalidChars
	}
	if maxLen > 0 && utf8.RuneCountInString(input) > maxLen {
		return "", ErrSearchTextTooLong
	}
	for _, c := range input {
		if unicode.IsControl(c) {
			return "", ErrSearchTextInvalidChars
		}
	}
	return input, nil
}

// ValidateSuggestionID trims id and rejects empty or oversized values.
func ValidateSuggestionID(id string) (string, error) {
	s := strings.TrimSpace(id)
	if s == "" {
		return "", ErrSuggestionIDEmpty
	}
	if len(s) > MaxSuggestionIDLength {
		return "", ErrSuggestionIDTooLong
	}
	return s, nil
}
