package arrowops

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/compute"
	"github.com/apache/arrow/go/v17/arrow/compute/exec"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

func CastArraysToBaseDataType[T arrow.Array](arrays ...arrow.Array) ([]T, error) {
	baseArrays := make([]T, len(arrays))
	for i, arr := range arrays {
		baseArr, ok := arr.(T)
		if !ok {
			return nil, fmt.Errorf("%w| array index: %d, type: %s", ErrUnsupportedDataType, i, arr.DataType())
		}
		baseArrays[i] = baseArr
	}
	return baseArrays, nil
}

// CastArray converts arr to dtype using a safe cast, so lossy conversions
// (truncation, overflow, unparsable strings) fail instead of changing values.
// The returned array is always a new reference owned by the caller.
func CastArray(ctx context.Context, mem *memory.GoAllocator, arr arrow.Array, dtype arrow.DataType) (arrow.Array, error) {
	if arrow.TypeEqual(arr.DataType(), dtype) {
		arr.Retain()
		return arr, nil
	}

	if !compute.CanCast(arr.DataType(), dtype) {
		return nil, fmt.Errorf("%w| from %s to %s: %w", ErrCastFailed, arr.DataType(), dtype, ErrUnsupportedDataType)
	}

	castedArr, err := compute.CastArray(exec.WithAllocator(ctx, mem), arr, compute.SafeCastOptions(dtype))
	if err != nil {
		return nil, fmt.Errorf("%w| from %s to %s: %w", ErrCastFailed, arr.DataType(), dtype, err)
	}
	return castedArr, nil
}
