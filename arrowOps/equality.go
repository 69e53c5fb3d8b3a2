package arrowops

import (
	"slices"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// RecordsEqual compares the named columns of both records. With no names
// every column is compared and the schemas must match.
func RecordsEqual(rec1, rec2 arrow.Record, fields ...string) bool {
	if len(fields) == 0 {
		if !rec1.Schema().Equal(rec2.Schema()) {
			return false
		}
		return array.RecordEqual(rec1, rec2)
	}

	for i := 0; i < int(rec1.NumCols()); i++ {
		columnName := rec1.ColumnName(i)
		if !slices.Contains(fields, columnName) {
			continue
		}
		otherIdx := rec2.Schema().FieldIndices(columnName)
		if len(otherIdx) != 1 {
			return false
		}
		if !array.Equal(rec1.Column(i), rec2.Column(otherIdx[0])) {
			return false
		}
	}
	return true
}
