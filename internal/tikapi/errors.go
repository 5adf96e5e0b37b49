package tikapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrParse is matched by every *ParseError via errors.Is.
var ErrParse = errors.New("malformed response document")

// ParseError reports a response body that is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return ErrParse.Error()
	}
	return fmt.Sprintf("%s: %v", ErrParse.Error(), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ValidationError reports outgoing request parameters that failed validation
// before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (field: %s)", e.Message, e.Field)
}

// ResponseError reports a non-2xx response from the upstream service.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("tikapi responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRateLimited reports a 429 response.
func (e *ResponseError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// IsUnauthorized reports a 401 response.
func (e *ResponseError) IsUnauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
