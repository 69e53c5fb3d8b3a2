package elements

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
)

const (
	ColumnPatientID    = "Patient_ID"
	ColumnAge          = "Age"
	ColumnGender       = "Gender"
	ColumnSymptoms     = "Symptoms"
	ColumnSymptomCount = "Symptom_Count"
	ColumnDisease      = "Disease"
	ColumnDiseaseGroup = "Disease_Group"
)

type Table struct {
	name    string
	columns []Column
}

func NewTable(name string) *Table {
	return &Table{
		name:    name,
		columns: []Column{},
	}
}

// NewHealthcareRawTable declares the columns expected in the raw csv, in file order.
func NewHealthcareRawTable() *Table {
	return NewTable("healthcare_raw").
		AddColumns(
			NewColumn(ColumnPatientID, arrow.PrimitiveTypes.Int64),
			NewColumn(ColumnAge, arrow.PrimitiveTypes.Int64),
			NewColumn(ColumnGender, arrow.BinaryTypes.String),
			NewColumn(ColumnSymptoms, arrow.BinaryTypes.String),
			NewColumn(ColumnSymptomCount, arrow.PrimitiveTypes.Int64),
			NewColumn(ColumnDisease, arrow.BinaryTypes.String),
		)
}

// NewHealthcareValidatedTable is the raw table plus the derived Disease_Group.
func NewHealthcareValidatedTable() *Table {
	table := NewHealthcareRawTable().
		AddColumns(NewColumn(ColumnDiseaseGroup, arrow.BinaryTypes.String))
	table.name = "healthcare_validated"
	return table
}

func (obj *Table) TableName() string {
	return obj.name
}

func (obj *Table) Columns() []Column {
	return obj.columns
}

func (obj *Table) ColumnNames() []string {
	names := make([]string, len(obj.columns))
	for i, col := range obj.columns {
		names[i] = col.Name
	}
	return names
}

func (obj *Table) AddColumns(columns ...Column) *Table {
	obj.columns = append(obj.columns, columns...)
	return obj
}

func (obj *Table) GetColumnByName(name string) (Column, error) {
	for _, col := range obj.columns {
		if col.Name == name {
			return col, nil
		}
	}
	return Column{}, fmt.Errorf("%w| column name: %s", ErrColumnNotFound, name)
}

func (obj *Table) HasColumn(name string) bool {
	_, err := obj.GetColumnByName(name)
	return err == nil
}

func (obj *Table) IsValid() error {
	if obj.name == "" {
		return fmt.Errorf("%w| name invalid", ErrTableInvalid)
	}

	if len(obj.columns) == 0 {
		return fmt.Errorf("%w| table does not have columns", ErrTableInvalid)
	}

	uniqColumns := make(map[string]struct{}, len(obj.columns))
	for _, col := range obj.columns {
		if !col.IsValid() {
			return fmt.Errorf("%w| table has invalid column", ErrTableInvalid)
		}
		if _, ok := uniqColumns[col.Name]; ok {
			return fmt.Errorf("%w| %w| column name: %s", ErrTableInvalid, ErrDuplicateColumn, col.Name)
		}
		uniqColumns[col.Name] = struct{}{}
	}

	return nil
}

// ArrowSchema builds a schema with the declared columns in declaration order.
func (obj *Table) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(obj.columns))
	for i, col := range obj.columns {
		fields[i] = arrow.Field{Name: col.Name, Type: col.Dtype, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

////////////////////////////////////////

type Column struct {
	Name  string
	Dtype arrow.DataType
}

func NewColumn(name string, dtype arrow.DataType) Column {
	return Column{
		Name:  name,
		Dtype: dtype,
	}
}

func (obj *Column) IsValid() bool {
	if obj.Name == "" {
		return false
	}

	if obj.Dtype == nil {
		return false
	}
	return true
}
