package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength matches the upstream search parameter limit.
const MaxQueryLength = 100

// Pagination bounds for the reporting API.
const (
	DefaultStreamerLimit = 100
	MaxStreamerLimit     = 500
	DefaultScanLimit     = 50
	MaxScanLimit         = 200
	DefaultStatsHours    = 24
	MaxStatsHours        = 24 * 30
)

// UsernamePattern defines the valid streamer handle format.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

// NormalizeQuery trims surrounding whitespace from a search query.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}

// ValidateQuery checks that a normalized query is non-empty and short enough
// for the upstream search.
func ValidateQuery(query string) (bool, string) {
	if query == "" {
		return false, "query is required"
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return false, fmt.Sprintf("query must be at most %d characters", MaxQueryLength)
	}
	return true, ""
}

// ValidateUsername checks a streamer handle taken from a URL path.
func ValidateUsername(username string) bool {
	if username == "" || len(username) > 64 {
		return false
	}
	return UsernamePattern.MatchString(username)
}

// ParseIntRange parses an optional integer parameter. An empty value yields
// def; anything outside [min, max] is rejected with a message naming field.
func ParseIntRange(field, raw string, def, min, max int) (int, string) {
	if raw == "" {
		return def, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Sprintf("%s must be an integer", field)
	}
	if n < min || n > max {
		return 0, fmt.Sprintf("%s must be between %d and %d", field, min, max)
	}
	return n, ""
}

// ParseOffset parses an optional non-negative offset.
func ParseOffset(raw string) (int, string) {
	if raw == "" {
		return 0, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, "offset must be a non-negative integer"
	}
	return n, ""
}

// ParseOptionalBool parses an optional boolean filter. Empty means unset.
func ParseOptionalBool(field, raw string) (*bool, string) {
	if raw == "" {
		return nil, ""
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Sprintf("%s must be true or false", field)
	}
	return &b, ""
}
