package discovery

import (
	"errors"
	"fmt"

	"livescan/internal/tikapi"
)

// SearchError is returned when the mandatory search lookup fails. It is the
// only failure that aborts a discovery run.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search for %q failed: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// UserMessage returns a human-readable explanation that distinguishes rate
// limiting, bad credentials, invalid input and generic API failures.
func (e *SearchError) UserMessage() string {
	var ve *tikapi.ValidationError
	if errors.As(e.Err, &ve) {
		return ve.Error()
	}

	var re *tikapi.ResponseError
	if errors.As(e.Err, &re) {
		switch {
		case re.IsRateLimited():
			return "Rate limit reached. Please wait a few minutes before searching again."
		case re.IsUnauthorized():
			return "Invalid TikAPI credentials. Check your API key and account key."
		default:
			return fmt.Sprintf("API error: %v (status: %d)", re, re.StatusCode)
		}
	}

	return fmt.Sprintf("API error: %v", e.Err)
}

// UserMessage returns the user-facing text for any error produced by a
// discovery run.
func UserMessage(err error) string {
	var se *SearchError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}
