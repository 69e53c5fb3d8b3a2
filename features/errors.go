package features

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField  = errors.New("missing field")
	ErrUnmappedValue = errors.New("value has no group mapping")
	ErrInvalidColumn = errors.New("invalid column type")
)

// UnmappedValuesError lists every distinct disease without a group, in the
// order they were first seen.
type UnmappedValuesError struct {
	Column string
	Values []string
}

func (e *UnmappedValuesError) Error() string {
	quoted := make([]string, len(e.Values))
	for i, value := range e.Values {
		quoted[i] = fmt.Sprintf("%q", value)
	}
	return fmt.Sprintf("%s| column %s: [%s]", ErrUnmappedValue, e.Column, strings.Join(quoted, ", "))
}

func (e *UnmappedValuesError) Unwrap() error {
	return ErrUnmappedValue
}
