package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneStripChars = regexp.MustCompile(`[\s\-\(\)\.]`)
	phoneDigits     = regexp.MustCompile(`^\d{10}$`)
)

// Date checks that value parses under the given layout. The zero layout
// defaults to ISO dates (2006-01-02).
func Date(value, layout string) (bool, string) {
	if layout == "" {
		layout = "2006-01-02"
	}
	if _, err := time.Parse(layout, value); err != nil {
		return false, fmt.Sprintf("invalid date %q: expected format %s", value, layout)
	}
	return true, ""
}

// Email checks that value looks like a deliverable email address.
func Email(value string) (bool, string) {
	if !emailPattern.MatchString(value) {
		return false, fmt.Sprintf("invalid email address %q", value)
	}
	return true, ""
}

// Phone checks that value is a US phone number. Formatting characters
// (spaces, dashes, parentheses, dots) are ignored, and a leading country
// code 1 on an 11-digit number is dropped before the 10-digit check.
func Phone(value string) (bool, string) {
	cleaned := phoneStripChars.ReplaceAllString(value, "")
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "1") {
		cleaned = cleaned[1:]
	}
	if !phoneDigits.MatchString(cleaned) {
		return false, fmt.Sprintf("invalid phone number %q", value)
	}
	return true, ""
}

// NumericRange checks that value falls inside the closed range [min, max].
// Either bound may be nil to leave that side unbounded.
func NumericRange(value float64, min, max *float64) (bool, string) {
	if min != nil && value < *min {
		return false, fmt.Sprintf("value %v below minimum %v", value, *min)
	}
	if max != nil && value > *max {
		return false, fmt.Sprintf("value %v above maximum %v", value, *max)
	}
	return true, ""
}
