package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProcessNotFound = errors.New("voting process not found")
	ErrStationNotFound = errors.New("polling station not found")
	ErrInvalidStatus   = errors.New("invalid voting process status for this operation")
)

// FieldError is one field-level business-rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field-level violation found in a payload.
// The validator never partially applies a change: either the payload is clean
// or the full list of violations comes back at once.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, field.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation, true
	}
	return nil, false
}
