package tracker

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrTerminalLocked = errors.New("status is locked in a terminal state")
	ErrNoUpdates      = errors.New("no updates supplied")
	ErrUnknownPreset  = errors.New("invalid follow-up preset")
)

// ValidationError carries every field-level violation found in one update.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, msg string) *ValidationError {
	v := &ValidationError{Message: msgInvalid}
	v.add(field, msg)
	return v
}
