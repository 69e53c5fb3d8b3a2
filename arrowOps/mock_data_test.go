package arrowops

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

func mockSchema() *arrow.Schema {
	return arrow.NewSchema(
		[]arrow.Field{
			{Name: "Patient_ID", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
			{Name: "Age", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
			{Name: "Disease", Type: arrow.BinaryTypes.String, Nullable: true},
		}, nil,
	)
}

// mockData builds numRows patients with ascending ids starting at offset
func mockData(mem *memory.GoAllocator, numRows int, offset int64) arrow.Record {
	recBuilder := array.NewRecordBuilder(mem, mockSchema())
	defer recBuilder.Release()

	diseases := []string{"Common Cold", "Asthma", "Migraine"}
	for i := 0; i < numRows; i++ {
		recBuilder.Field(0).(*array.Int64Builder).Append(offset + int64(i))
		recBuilder.Field(1).(*array.Int64Builder).Append(20 + int64(i))
		recBuilder.Field(2).(*array.StringBuilder).Append(diseases[i%len(diseases)])
	}

	return recBuilder.NewRecord()
}
