package validation

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/photoflow/photoflow-api/pkg/apperror"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator validates input data
type Validator struct {
	errors []FieldError
}

// New creates a new Validator
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Error returns the validation error as an AppError. A single failure keeps
// its message so callers see e.g. "missing 'email' field".
func (v *Validator) Error() *apperror.AppError {
	if !v.HasErrors() {
		return nil
	}
	if len(v.errors) == 1 {
		return apperror.Validation(v.errors[0].Message).
			WithDetail("field", v.errors[0].Field)
	}

	fieldErrors := make(map[string]string)
	for _, e := range v.errors {
		fieldErrors[e.Field] = e.Message
	}
	return apperror.ValidationWithFields(fieldErrors)
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, fmt.Sprintf("missing '%s' field", field))
	}
	return v
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.AddError(field, fmt.Sprintf("%s must not exceed %d characters", field, max))
	}
	return v
}

// Email validates email format. Empty values are left to Required.
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !emailRegex.MatchString(value) {
		v.AddError(field, fmt.Sprintf("%s must be a valid email address", field))
	}
	return v
}

// ObjectKey rejects keys that cannot name a storage object
func (v *Validator) ObjectKey(field, value string) *Validator {
	if value == "" {
		return v
	}
	if strings.HasPrefix(value, "/") || strings.Contains(value, "..") {
		v.AddError(field, fmt.Sprintf("%s must be a relative object key", field))
	}
	return v
}

// Base64 validates standard base64 content. Empty values are left to Required.
func (v *Validator) Base64(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := base64.StdEncoding.DecodeString(value); err != nil {
		v.AddError(field, fmt.Sprintf("%s must be base64 encoded", field))
	}
	return v
}

// Validate runs validation and returns error if any
func Validate(fn func(v *Validator)) error {
	v := New()
	fn(v)
	if v.HasErrors() {
		return v.Error()
	}
	return nil
}
