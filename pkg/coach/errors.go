package coach

import (
	"errors"
	"strings"
)

// ErrEmptyResult is returned when the provider answers successfully but
// yields no usable text for an operation that does not fall back.
var ErrEmptyResult = errors.New("provider returned no text")

// ValidationError reports required fields that were missing or blank.
// It is returned before any provider call is made.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// requireFields returns a *ValidationError naming every blank field, in the
// order given, or nil if all are present.
func requireFields(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: missing}
}
