package features

import (
	"context"
	"fmt"
	"slices"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/alekLukanen/HealthcareMLOps/arrowOps"
	"github.com/alekLukanen/HealthcareMLOps/elements"
)

const (
	GroupRespiratoryAllergy    = "Respiratory / Allergy"
	GroupCardioMetabolic       = "Cardio-Metabolic"
	GroupGastrointestinalLiver = "Gastrointestinal / Liver"
	GroupNeurological          = "Neurological"
	GroupMentalHealth          = "Mental Health"
	GroupMusculoskeletalSkin   = "Musculoskeletal / Skin"
	GroupChronicOrganEndocrine = "Chronic Organ / Endocrine / Blood"
	nullDiseaseValue           = "<null>"
)

// diseaseToGroup is closed over the known diseases. Anything missing from it
// is rejected rather than given a default group.
var diseaseToGroup = map[string]string{
	"Allergy":      GroupRespiratoryAllergy,
	"Asthma":       GroupRespiratoryAllergy,
	"Bronchitis":   GroupRespiratoryAllergy,
	"Common Cold":  GroupRespiratoryAllergy,
	"COVID-19":     GroupRespiratoryAllergy,
	"Influenza":    GroupRespiratoryAllergy,
	"Pneumonia":    GroupRespiratoryAllergy,
	"Sinusitis":    GroupRespiratoryAllergy,
	"Tuberculosis": GroupRespiratoryAllergy,

	"Heart Disease": GroupCardioMetabolic,
	"Hypertension":  GroupCardioMetabolic,
	"Stroke":        GroupCardioMetabolic,
	"Diabetes":      GroupCardioMetabolic,
	"Obesity":       GroupCardioMetabolic,

	"Food Poisoning": GroupGastrointestinalLiver,
	"Gastritis":      GroupGastrointestinalLiver,
	"IBS":            GroupGastrointestinalLiver,
	"Liver Disease":  GroupGastrointestinalLiver,
	"Ulcer":          GroupGastrointestinalLiver,

	"Epilepsy":    GroupNeurological,
	"Migraine":    GroupNeurological,
	"Parkinson's": GroupNeurological,
	"Dementia":    GroupNeurological,

	"Anxiety":    GroupMentalHealth,
	"Depression": GroupMentalHealth,

	"Arthritis":  GroupMusculoskeletalSkin,
	"Dermatitis": GroupMusculoskeletalSkin,

	"Chronic Kidney Disease": GroupChronicOrganEndocrine,
	"Anemia":                 GroupChronicOrganEndocrine,
	"Thyroid Disorder":       GroupChronicOrganEndocrine,
}

var validGroupLabels = func() []string {
	labels := make([]string, 0, 7)
	for _, group := range diseaseToGroup {
		if !slices.Contains(labels, group) {
			labels = append(labels, group)
		}
	}
	slices.Sort(labels)
	return labels
}()

// GroupForDisease looks up the coarse group of a fine-grained disease label.
func GroupForDisease(disease string) (string, bool) {
	group, ok := diseaseToGroup[disease]
	return group, ok
}

// ValidGroupLabels returns the sorted set of group labels. The slice is a copy.
func ValidGroupLabels() []string {
	return slices.Clone(validGroupLabels)
}

// KnownDiseases returns the sorted diseases that have a group.
func KnownDiseases() []string {
	diseases := make([]string, 0, len(diseaseToGroup))
	for disease := range diseaseToGroup {
		diseases = append(diseases, disease)
	}
	slices.Sort(diseases)
	return diseases
}

func DiseaseGroupField() arrow.Field {
	return arrow.Field{Name: elements.ColumnDiseaseGroup, Type: arrow.BinaryTypes.String, Nullable: true}
}

// AddDiseaseGroupColumn returns a new record with a Disease_Group column derived
// from Disease. The input record is not modified. Every distinct disease that
// has no group is reported in a single *UnmappedValuesError. Disease columns
// that are not plain strings are cast to string first.
func AddDiseaseGroupColumn(ctx context.Context, mem *memory.GoAllocator, record arrow.Record, dropOriginal bool) (arrow.Record, error) {
	colIndices := record.Schema().FieldIndices(elements.ColumnDisease)
	if len(colIndices) == 0 {
		return nil, fmt.Errorf("%w| expected '%s' column to build %s", ErrMissingField, elements.ColumnDisease, elements.ColumnDiseaseGroup)
	}

	diseaseArr, err := arrowops.CastArray(ctx, mem, record.Column(colIndices[0]), arrow.BinaryTypes.String)
	if err != nil {
		return nil, fmt.Errorf("%w| column %s: %w", ErrInvalidColumn, elements.ColumnDisease, err)
	}
	defer diseaseArr.Release()

	baseArrays, err := arrowops.CastArraysToBaseDataType[*array.String](diseaseArr)
	if err != nil {
		return nil, fmt.Errorf("%w| column %s: %w", ErrInvalidColumn, elements.ColumnDisease, err)
	}
	diseases := baseArrays[0]

	groupBuilder := array.NewStringBuilder(mem)
	defer groupBuilder.Release()
	groupBuilder.Reserve(diseases.Len())

	unmapped := make([]string, 0)
	for i := 0; i < diseases.Len(); i++ {
		if diseases.IsNull(i) {
			if !slices.Contains(unmapped, nullDiseaseValue) {
				unmapped = append(unmapped, nullDiseaseValue)
			}
			groupBuilder.AppendNull()
			continue
		}

		disease := diseases.Value(i)
		group, ok := GroupForDisease(disease)
		if !ok {
			if !slices.Contains(unmapped, disease) {
				unmapped = append(unmapped, disease)
			}
			groupBuilder.AppendNull()
			continue
		}
		groupBuilder.Append(group)
	}

	if len(unmapped) > 0 {
		return nil, &UnmappedValuesError{Column: elements.ColumnDisease, Values: unmapped}
	}

	groups := groupBuilder.NewArray()
	defer groups.Release()

	withGroup, err := arrowops.AppendColumn(record, DiseaseGroupField(), groups)
	if err != nil {
		return nil, err
	}
	if !dropOriginal {
		return withGroup, nil
	}
	defer withGroup.Release()

	return arrowops.DropColumns(withGroup, elements.ColumnDisease)
}
