package validation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("processed raw parquet not found")
	ErrSchemaViolation = errors.New("schema violation")
)

const (
	CheckColumnInSchema    = "column_in_schema"
	CheckColumnInDataframe = "column_in_dataframe"
	CheckCoerceDtype       = "coerce_dtype"
	CheckNotNullable       = "not_nullable"
)

// Failure is one violated rule. Index is the row, or -1 when the failure
// applies to the whole column.
type Failure struct {
	Column      string
	Check       string
	Index       int
	FailureCase string
}

func (obj Failure) String() string {
	if obj.Index < 0 {
		return fmt.Sprintf("column '%s' failed %s: %s", obj.Column, obj.Check, obj.FailureCase)
	}
	return fmt.Sprintf("column '%s' failed %s at row %d: %s", obj.Column, obj.Check, obj.Index, obj.FailureCase)
}

type SchemaError struct {
	SchemaName string
	Failures   []Failure
}

func (e *SchemaError) Error() string {
	lines := make([]string, 0, len(e.Failures)+1)
	lines = append(lines, fmt.Sprintf("%s| schema '%s' has %d failure(s)", ErrSchemaViolation, e.SchemaName, len(e.Failures)))
	for _, failure := range e.Failures {
		lines = append(lines, "  "+failure.String())
	}
	return strings.Join(lines, "\n")
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}

func (e *SchemaError) FailuresForColumn(column string) []Failure {
	failures := make([]Failure, 0)
	for _, failure := range e.Failures {
		if failure.Column == column {
			failures = append(failures, failure)
		}
	}
	return failures
}

func (e *SchemaError) HasFailure(column, check string) bool {
	for _, failure := range e.Failures {
		if failure.Column == column && failure.Check == check {
			return true
		}
	}
	return false
}
