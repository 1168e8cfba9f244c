package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSearchText_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"ascii", "paris"},
		{"trailing space kept", "new york "},
		{"unicode", "São Paulo"},
		{"cjk", "東京"},
		{"punctuation", "St. John's, NL"},
		{"digits", "10115 Berlin"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateSearchText(tc.input, 200)
			if err != nil {
				t.Fatalf("ValidateSearchText(%q) error = %v", tc.input, err)
			}
			if got != tc.input {
				t.Errorf("ValidateSearchText(%q) = %q, want input unchanged", tc.input, got)
			}
		})
	}
}

func TestValidateSearchText_TooLong(t *testing.T) {
	if _, err := ValidateSearchText(strings.Repeat("a", 201), 200); !errors.Is(err, ErrSearchTextTooLong) {
		t.Errorf("error = %v, want ErrSearchTextTooLong", err)
	}
	// Runes, not bytes.
	if _, err := ValidateSearchText(strings.Repeat("é", 200), 200); err != nil {
		t.Errorf("200 runes should be accepted, got %v", err)
	}
	if _, err := ValidateSearchText(strings.Repeat("a", 5000), 0); err != nil {
		t.Errorf("maxLen 0 disables the bound, got %v", err)
	}
}

func TestValidateSearchText_InvalidChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"newline", "par\nis"},
		{"tab", "par\tis"},
		{"nul", "par\x00is"},
		{"escape", "\x1b[31mparis"},
		{"invalid utf8", "par\xffis"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateSearchText(tc.input, 200)
			if !errors.Is(err, ErrSearchTextInvalidChars) {
				t.Errorf("error = %v, want ErrSearchTextInvalidChars", err)
			}
		})
	}
}

func TestValidateSuggestionID(t *testing.T) {
	got, err := ValidateSuggestionID("  51a0b2c3  ")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got != "51a0b2c3" {
		t.Errorf("got %q, want trimmed id", got)
	}

	if _, err := ValidateSuggestionID(" "); !errors.Is(err, ErrSuggestionIDEmpty) {
		t.Errorf("error = %v, want ErrSuggestionIDEmpty", err)
	}
	if _, err := ValidateSuggestionID(strings.Repeat("x", MaxSuggestionIDLength+1)); !errors.Is(err, ErrSuggestionIDTooLong) {
		t.Errorf("error = %v, want ErrSuggestionIDTooLong", err)
	}
}
