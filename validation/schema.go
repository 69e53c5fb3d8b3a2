package validation

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/alekLukanen/HealthcareMLOps/arrowOps"
)

type ColumnRule struct {
	Name     string
	Dtype    arrow.DataType
	Nullable bool
	Checks   []Check
}

func NewColumnRule(name string, dtype arrow.DataType, checks ...Check) ColumnRule {
	return ColumnRule{
		Name:   name,
		Dtype:  dtype,
		Checks: checks,
	}
}

// Schema is a set of column rules applied to a whole record at once. Columns
// whose type differs from their rule are safely cast before checks run. When
// Strict is set, columns without a rule are failures.
type Schema struct {
	Name    string
	Columns []ColumnRule
	Strict  bool
}

func (obj *Schema) Rule(name string) (ColumnRule, bool) {
	for _, rule := range obj.Columns {
		if rule.Name == name {
			return rule, true
		}
	}
	return ColumnRule{}, false
}

// Validate evaluates every rule against record and collects all failures
// before returning. On success it returns a record, in the input column
// order, with coerced columns replaced. The caller releases it.
func (obj *Schema) Validate(ctx context.Context, mem *memory.GoAllocator, record arrow.Record) (arrow.Record, error) {
	failures := make([]Failure, 0)

	if obj.Strict {
		for _, field := range record.Schema().Fields() {
			if _, ok := obj.Rule(field.Name); !ok {
				failures = append(failures, Failure{
					Column:      field.Name,
					Check:       CheckColumnInSchema,
					Index:       -1,
					FailureCase: "column not declared in schema",
				})
			}
		}
	}

	validated := record
	validated.Retain()
	defer func() {
		if validated != nil {
			validated.Release()
		}
	}()

	for _, rule := range obj.Columns {
		colIndices := record.Schema().FieldIndices(rule.Name)
		if len(colIndices) == 0 {
			failures = append(failures, Failure{
				Column:      rule.Name,
				Check:       CheckColumnInDataframe,
				Index:       -1,
				FailureCase: "column missing from record",
			})
			continue
		}
		colIdx := colIndices[0]
		arr := record.Column(colIdx)

		if !arrow.TypeEqual(arr.DataType(), rule.Dtype) {
			coerced, err := obj.coerceColumn(ctx, mem, validated, colIdx, rule.Dtype)
			if err != nil {
				failures = append(failures, Failure{
					Column:      rule.Name,
					Check:       CheckCoerceDtype,
					Index:       -1,
					FailureCase: fmt.Sprintf("could not coerce %s to %s", arr.DataType(), rule.Dtype),
				})
				continue
			}
			validated.Release()
			validated = coerced
		}

		failures = append(failures, obj.checkColumn(rule, validated.Column(colIdx))...)
	}

	if len(failures) > 0 {
		return nil, &SchemaError{SchemaName: obj.Name, Failures: failures}
	}

	result := validated
	validated = nil
	return result, nil
}

// coerceColumn returns a copy of rec with column idx safely cast to dtype.
func (obj *Schema) coerceColumn(
	ctx context.Context,
	mem *memory.GoAllocator,
	rec arrow.Record,
	idx int,
	dtype arrow.DataType,
) (arrow.Record, error) {
	castedArr, err := arrowops.CastArray(ctx, mem, rec.Column(idx), dtype)
	if err != nil {
		return nil, err
	}
	defer castedArr.Release()

	field := rec.Schema().Field(idx)
	field.Type = dtype
	return arrowops.ReplaceColumn(rec, idx, field, castedArr)
}

func (obj *Schema) checkColumn(rule ColumnRule, arr arrow.Array) []Failure {
	failures := make([]Failure, 0)

	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			if !rule.Nullable {
				failures = append(failures, Failure{
					Column:      rule.Name,
					Check:       CheckNotNullable,
					Index:       i,
					FailureCase: "null",
				})
			}
			continue
		}

		for _, check := range rule.Checks {
			if !check.Valid(arr, i) {
				failures = append(failures, Failure{
					Column:      rule.Name,
					Check:       check.Name,
					Index:       i,
					FailureCase: arr.ValueStr(i),
				})
			}
		}
	}

	return failures
}
