package arrowops

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	arrowcsv "github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ReadCSVHeader returns the column names on the first line of the file.
func ReadCSVHeader(file io.Reader) ([]string, error) {
	header, err := csv.NewReader(file).Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("%w| header: %w", ErrParseCSV, err)
	}
	return header, nil
}

// ReadCSVFile reads the whole file into one record. Columns present in
// columnTypes are parsed as that type; every other column is read as a string.
func ReadCSVFile(
	ctx context.Context,
	mem *memory.GoAllocator,
	filePath string,
	columnTypes map[string]arrow.DataType,
) (arrow.Record, error) {

	file, err := os.Open(filePath)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("failed opening csv file %s", filePath))
	}
	defer file.Close()

	header, err := ReadCSVHeader(file)
	if err != nil {
		return nil, fmt.Errorf("%w| file: %s", err, filePath)
	}

	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		dtype, ok := columnTypes[name]
		if !ok {
			dtype = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: name, Type: dtype, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("failed rewinding csv file %s", filePath))
	}

	csvReader := arrowcsv.NewReader(
		file,
		schema,
		arrowcsv.WithHeader(true),
		arrowcsv.WithChunk(-1),
		arrowcsv.WithAllocator(mem),
	)
	defer csvReader.Release()

	if !csvReader.Next() {
		if err := csvReader.Err(); err != nil {
			return nil, fmt.Errorf("%w| file: %s| %w", ErrParseCSV, filePath, err)
		}
		return nil, fmt.Errorf("%w| file: %s", ErrNoDataLeft, filePath)
	}
	if err := csvReader.Err(); err != nil {
		return nil, fmt.Errorf("%w| file: %s| %w", ErrParseCSV, filePath, err)
	}

	record := csvReader.Record()
	record.Retain()
	return record, nil
}
