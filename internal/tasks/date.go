package tasks

import (
	"strings"
	"time"
)

// DefaultDateLayouts are the layouts accepted when the config does not
// override them.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"02.01.2006",
	"2.1.2006",
}

// DateValidator checks due dates against a configured list of Go time
// layouts. Matching input is stored verbatim, not as a parsed time.
type DateValidator struct {
	layouts []string
}

// NewDateValidator builds a validator for the given layouts, falling back to
// DefaultDateLayouts when the list is empty.
func NewDateValidator(layouts []string) *DateValidator {
	cleaned := make([]string, 0, len(layouts))
	for _, l := range layouts {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultDateLayouts...)
	}
	return &DateValidator{layouts: cleaned}
}

// Valid reports whether the input parses under at least one accepted layout.
func (v *DateValidator) Valid(input string) bool {
	s := strings.TrimSpace(input)
	if s == "" {
		return false
	}
	for _, layout := range v.layouts {
		if _, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return true
		}
	}
	return false
}

// Layouts returns the accepted layouts, mainly for prompts and logs.
func (v *DateValidator) Layouts() []string {
	return append([]string(nil), v.layouts...)
}

// NormalizeText collapses all whitespace runs to single spaces and trims the
// ends. Dialogue input goes through this before any emptiness check.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
