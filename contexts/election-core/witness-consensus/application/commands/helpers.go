package commands

import (
	"errors"
	"strings"
	"time"

	domainerrors "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/errors"
)

// parseSubmissionTimestamp accepts RFC 3339 with or without sub-second
// precision, which covers what the mobile clients emit.
func parseSubmissionTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}

// appendFieldError folds an extra field violation into an existing validation
// error, creating one when err is nil or of another kind.
func appendFieldError(err error, field string, message string) error {
	extra := domainerrors.FieldError{Field: field, Message: message}
	if validation, ok := domainerrors.AsValidationError(err); ok {
		validation.Fields = append(validation.Fields, extra)
		return validation
	}
	return &domainerrors.ValidationError{Fields: []domainerrors.FieldError{extra}}
}

func errorsIsStationUnknown(err error) bool {
	return errors.Is(err, domainerrors.ErrStationNotFound)
}
