package validation

import (
	"github.com/alekLukanen/HealthcareMLOps/elements"
	"github.com/alekLukanen/HealthcareMLOps/features"
)

var (
	GenderValues = []string{"Male", "Female", "Other"}
)

// HealthcareSchema is the contract for the validated snapshot: the raw columns
// plus Disease_Group, nothing else. Every column is required and non-null.
func HealthcareSchema() *Schema {
	checks := map[string][]Check{
		elements.ColumnPatientID:    {Ge(1)},
		elements.ColumnAge:          {Ge(0), Le(120)},
		elements.ColumnGender:       {IsIn(GenderValues...)},
		elements.ColumnSymptoms:     {StrLengthMin(1)},
		elements.ColumnSymptomCount: {Ge(1), Le(10)},
		// kept for inspection, the group is the modeling target
		elements.ColumnDisease:      {StrLengthMin(1)},
		elements.ColumnDiseaseGroup: {IsIn(features.ValidGroupLabels()...)},
	}

	table := elements.NewHealthcareValidatedTable()
	rules := make([]ColumnRule, 0, len(table.Columns()))
	for _, col := range table.Columns() {
		rules = append(rules, NewColumnRule(col.Name, col.Dtype, checks[col.Name]...))
	}

	return &Schema{
		Name:    table.TableName(),
		Columns: rules,
		Strict:  true,
	}
}
