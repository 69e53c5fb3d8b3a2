package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/alekLukanen/HealthcareMLOps/arrowOps"
	"github.com/alekLukanen/HealthcareMLOps/config"
	"github.com/alekLukanen/HealthcareMLOps/elements"
)

// LoadRawData reads the csv at path and casts the declared healthcare columns.
// Ranges are not checked here and undeclared columns are passed through as strings.
func LoadRawData(ctx context.Context, mem *memory.GoAllocator, path string) (arrow.Record, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w| raw data not found at %s", ErrNotFound, path)
		}
		return nil, errs.Wrap(err, fmt.Errorf("failed checking raw data at %s", path))
	}

	table := elements.NewHealthcareRawTable()
	columnTypes := make(map[string]arrow.DataType, len(table.Columns()))
	for _, col := range table.Columns() {
		columnTypes[col.Name] = col.Dtype
	}

	record, err := arrowops.ReadCSVFile(ctx, mem, path, columnTypes)
	if err != nil {
		if errors.Is(err, arrowops.ErrEmptyCSV) {
			return nil, fmt.Errorf("%w| %s has no header| %w", ErrMissingField, path, err)
		}
		if errors.Is(err, arrowops.ErrParseCSV) {
			return nil, fmt.Errorf("%w| file: %s| %w", ErrTypeCoercion, path, err)
		}
		return nil, err
	}

	for _, colName := range table.ColumnNames() {
		if len(record.Schema().FieldIndices(colName)) == 0 {
			record.Release()
			return nil, fmt.Errorf("%w| expected '%s' column in %s", ErrMissingField, colName, path)
		}
	}

	return record, nil
}

// SaveAsParquet writes the record to dir/healthcare_raw.parquet, creating dir
// and its parents when needed, and returns the written path.
func SaveAsParquet(ctx context.Context, mem *memory.GoAllocator, record arrow.Record, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, fmt.Errorf("failed creating processed dir %s", dir))
	}

	outPath := filepath.Join(dir, config.RawSnapshotName)
	if err := arrowops.WriteRecordToParquetFile(ctx, mem, record, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// RunIngestion reads paths.RawCSV and writes the raw snapshot into paths.ProcessedDir.
func RunIngestion(ctx context.Context, logger *slog.Logger, mem *memory.GoAllocator, paths config.Paths) (string, error) {
	record, err := LoadRawData(ctx, mem, paths.RawCSV)
	if err != nil {
		return "", err
	}
	defer record.Release()

	outPath, err := SaveAsParquet(ctx, mem, record, paths.ProcessedDir)
	if err != nil {
		return "", err
	}

	logger.Info(
		"saved processed raw data",
		slog.String("stage", "ingest"),
		slog.String("path", outPath),
		slog.Int64("numRows", record.NumRows()),
	)
	return outPath, nil
}
