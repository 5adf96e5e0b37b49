package tikapi

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// SearchRequest is the parameter set of a live search call.
type SearchRequest struct {
	Query string `validate:"required,max=100"`
}

// RecommendRequest is the parameter set of a live recommendation call.
type RecommendRequest struct {
	RoomID string `validate:"required,max=64,alphanum"`
}

// credentials are validated with every request so a missing key pair is
// reported as a validation failure rather than an upstream 401.
type credentials struct {
	APIKey     string `validate:"required"`
	AccountKey string `validate:"required"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateRequest runs struct validation and converts the first failure into
// a *ValidationError.
func validateRequest(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Field:   toSnake(fe.Field()),
			Message: validationMessage(fe),
		}
	}
	return &ValidationError{Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "alphanum":
		return field + " must contain only letters and numbers"
	default:
		return field + " is invalid"
	}
}

// toSnake turns RoomID into room_id and APIKey into api_key.
func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
