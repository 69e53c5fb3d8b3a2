package arrowops

import (
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
)

var (
	ErrUnsupportedDataType  = errors.New("unsupported data type")
	ErrColumnNotFound       = errors.New("column not found")
	ErrColumnAlreadyExists  = errors.New("column already exists")
	ErrColumnLengthMismatch = errors.New("column length mismatch")
	ErrSchemasNotEqual      = errors.New("schemas not equal")
	ErrNoDataLeft           = errors.New("no data left")
	ErrEmptyCSV             = errors.New("csv file has no header")
	ErrParseCSV             = errors.New("unable to parse csv")
	ErrCastFailed           = errors.New("cast failed")
)

func FErrSchemasNotEqual(record1, record2 arrow.Record) error {
	return fmt.Errorf(
		"%w|\n record1.schema: %s\n record2.schema: %s\n",
		ErrSchemasNotEqual,
		record1.Schema(),
		record2.Schema())
}
