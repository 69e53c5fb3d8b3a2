package validation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/alekLukanen/HealthcareMLOps/arrowOps"
	"github.com/alekLukanen/HealthcareMLOps/config"
	"github.com/alekLukanen/HealthcareMLOps/features"
)

func ValidateDataframe(ctx context.Context, mem *memory.GoAllocator, record arrow.Record) (arrow.Record, error) {
	return HealthcareSchema().Validate(ctx, mem, record)
}

// RunValidation reads the raw snapshot, adds Disease_Group, validates the
// result and writes the validated snapshot into paths.ProcessedDir. An empty
// parquetPath reads the default raw snapshot. Nothing is written on failure.
func RunValidation(
	ctx context.Context,
	logger *slog.Logger,
	mem *memory.GoAllocator,
	paths config.Paths,
	parquetPath string,
) (arrow.Record, error) {
	if parquetPath == "" {
		parquetPath = paths.RawSnapshotPath()
	}

	if _, err := os.Stat(parquetPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w| processed raw parquet not found at %s", ErrNotFound, parquetPath)
		}
		return nil, errs.Wrap(err, fmt.Errorf("failed checking raw snapshot at %s", parquetPath))
	}

	record, err := arrowops.ReadParquetFileAsRecord(ctx, mem, parquetPath)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	withGroup, err := features.AddDiseaseGroupColumn(ctx, mem, record, false)
	if err != nil {
		return nil, err
	}
	defer withGroup.Release()

	validated, err := ValidateDataframe(ctx, mem, withGroup)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(paths.ProcessedDir, 0o755); err != nil {
		validated.Release()
		return nil, errs.Wrap(err, fmt.Errorf("failed creating processed dir %s", paths.ProcessedDir))
	}

	outPath := paths.ValidatedSnapshotPath()
	if err := arrowops.WriteRecordToParquetFile(ctx, mem, validated, outPath); err != nil {
		validated.Release()
		return nil, err
	}

	logger.Info(
		"saved validated data with disease group",
		slog.String("stage", "validate"),
		slog.String("path", outPath),
		slog.Int64("numRows", validated.NumRows()),
	)
	return validated, nil
}
