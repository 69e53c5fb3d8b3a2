package validation

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// Check is a row predicate evaluated on every non-null value of a column
// after coercion.
type Check struct {
	Name  string
	Valid func(arr arrow.Array, i int) bool
}

func int64Value(arr arrow.Array, i int) (int64, bool) {
	ints, ok := arr.(*array.Int64)
	if !ok {
		return 0, false
	}
	return ints.Value(i), true
}

func stringValue(arr arrow.Array, i int) (string, bool) {
	strs, ok := arr.(*array.String)
	if !ok {
		return "", false
	}
	return strs.Value(i), true
}

func Ge(min int64) Check {
	return Check{
		Name: fmt.Sprintf("greater_than_or_equal_to(%d)", min),
		Valid: func(arr arrow.Array, i int) bool {
			v, ok := int64Value(arr, i)
			return ok && v >= min
		},
	}
}

func Le(max int64) Check {
	return Check{
		Name: fmt.Sprintf("less_than_or_equal_to(%d)", max),
		Valid: func(arr arrow.Array, i int) bool {
			v, ok := int64Value(arr, i)
			return ok && v <= max
		},
	}
}

func IsIn(values ...string) Check {
	allowed := slices.Clone(values)
	return Check{
		Name: fmt.Sprintf("isin([%s])", strings.Join(allowed, ", ")),
		Valid: func(arr arrow.Array, i int) bool {
			v, ok := stringValue(arr, i)
			return ok && slices.Contains(allowed, v)
		},
	}
}

// StrLengthMin counts characters, not bytes.
func StrLengthMin(min int) Check {
	return Check{
		Name: fmt.Sprintf("str_length(%d, None)", min),
		Valid: func(arr arrow.Array, i int) bool {
			v, ok := stringValue(arr, i)
			return ok && utf8.RuneCountInString(v) >= min
		},
	}
}

func InRange(min, max int64) Check {
	return Check{
		Name: fmt.Sprintf("in_range(%d, %d)", min, max),
		Valid: func(arr arrow.Array, i int) bool {
			v, ok := int64Value(arr, i)
			return ok && v >= min && v <= max
		},
	}
}
