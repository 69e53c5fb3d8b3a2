package arrowops

import (
	"fmt"
	"slices"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

func TakeColumns(rec arrow.Record, columnNames []string) (arrow.Record, error) {
	var selectedCols []arrow.Array
	var selectedFields []arrow.Field

	for _, colName := range columnNames {
		colIndex := rec.Schema().FieldIndices(colName)
		if len(colIndex) == 0 {
			return nil, fmt.Errorf("%w| column name: %s", ErrColumnNotFound, colName)
		}
		for _, colIndex := range colIndex {
			selectedCols = append(selectedCols, rec.Column(colIndex))
			selectedFields = append(selectedFields, rec.Schema().Field(colIndex))
		}
	}

	newSchema := arrow.NewSchema(selectedFields, nil)
	newRecord := array.NewRecord(newSchema, selectedCols, rec.NumRows())

	return newRecord, nil
}

// DropColumns returns a record without the named columns, keeping the
// remaining columns in their original order.
func DropColumns(rec arrow.Record, columnNames ...string) (arrow.Record, error) {
	for _, colName := range columnNames {
		if len(rec.Schema().FieldIndices(colName)) == 0 {
			return nil, fmt.Errorf("%w| column name: %s", ErrColumnNotFound, colName)
		}
	}

	keep := make([]string, 0, rec.NumCols())
	for _, field := range rec.Schema().Fields() {
		if !slices.Contains(columnNames, field.Name) {
			keep = append(keep, field.Name)
		}
	}
	return TakeColumns(rec, keep)
}

// AppendColumn returns a record with column added after the existing columns.
// The caller keeps ownership of column.
func AppendColumn(rec arrow.Record, field arrow.Field, column arrow.Array) (arrow.Record, error) {
	if len(rec.Schema().FieldIndices(field.Name)) > 0 {
		return nil, fmt.Errorf("%w| column name: %s", ErrColumnAlreadyExists, field.Name)
	}
	if int64(column.Len()) != rec.NumRows() {
		return nil, fmt.Errorf("%w| column %s has %d rows, record has %d", ErrColumnLengthMismatch, field.Name, column.Len(), rec.NumRows())
	}

	fields := append(slices.Clone(rec.Schema().Fields()), field)
	columns := append(slices.Clone(rec.Columns()), column)

	return array.NewRecord(arrow.NewSchema(fields, nil), columns, rec.NumRows()), nil
}

// ReplaceColumn returns a record where the column at idx is swapped for column.
// The caller keeps ownership of column.
func ReplaceColumn(rec arrow.Record, idx int, field arrow.Field, column arrow.Array) (arrow.Record, error) {
	if idx < 0 || idx >= int(rec.NumCols()) {
		return nil, fmt.Errorf("%w| column index: %d", ErrColumnNotFound, idx)
	}
	if int64(column.Len()) != rec.NumRows() {
		return nil, fmt.Errorf("%w| column %s has %d rows, record has %d", ErrColumnLengthMismatch, field.Name, column.Len(), rec.NumRows())
	}

	fields := slices.Clone(rec.Schema().Fields())
	fields[idx] = field
	columns := slices.Clone(rec.Columns())
	columns[idx] = column

	return array.NewRecord(arrow.NewSchema(fields, nil), columns, rec.NumRows()), nil
}
