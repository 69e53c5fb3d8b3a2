package arrowops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	parquetFileUtils "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

// WriteRecordToParquetFile truncates filePath and writes the record as a single
// parquet file. Only the record's own columns are written.
func WriteRecordToParquetFile(ctx context.Context, mem *memory.GoAllocator, record arrow.Record, filePath string) error {

	file, err := os.Create(filePath)
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("failed creating parquet file %s", filePath))
	}
	defer file.Close()

	parquetWriteProps := parquet.NewWriterProperties(
		parquet.WithStats(true),
		parquet.WithAllocator(mem),
	)
	arrowWriteProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	parquetFileWriter, err := pqarrow.NewFileWriter(record.Schema(), file, parquetWriteProps, arrowWriteProps)
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("failed creating parquet writer for %s", filePath))
	}

	err = parquetFileWriter.Write(record)
	if err != nil {
		parquetFileWriter.Close()
		return errs.Wrap(err, fmt.Errorf("failed writing record to %s", filePath))
	}

	// closing the writer flushes the footer and closes the file
	err = parquetFileWriter.Close()
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("failed closing parquet writer for %s", filePath))
	}
	return nil
}

func ReadParquetFile(ctx context.Context, mem *memory.GoAllocator, filePath string) ([]arrow.Record, *arrow.Schema, error) {

	parquetFileReader, err := parquetFileUtils.OpenParquetFile(filePath, false)
	if err != nil {
		return nil, nil, errs.Wrap(err, fmt.Errorf("failed opening parquet file %s", filePath))
	}
	defer parquetFileReader.Close()

	parquetReadProps := pqarrow.ArrowReadProperties{
		Parallel:  false,
		BatchSize: 1 << 20,
	}
	arrowFileReader, err := pqarrow.NewFileReader(parquetFileReader, parquetReadProps, mem)
	if err != nil {
		return nil, nil, errs.Wrap(err, fmt.Errorf("failed creating arrow reader for %s", filePath))
	}

	schema, err := arrowFileReader.Schema()
	if err != nil {
		return nil, nil, errs.Wrap(err, fmt.Errorf("failed reading schema of %s", filePath))
	}

	recordReader, err := arrowFileReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, nil, errs.Wrap(err, fmt.Errorf("failed creating record reader for %s", filePath))
	}
	defer recordReader.Release()

	records := make([]arrow.Record, 0)
	for recordReader.Next() {
		record := recordReader.Record()
		record.Retain()
		records = append(records, record)
	}
	// the reader reports io.EOF once every row group is consumed
	if err := recordReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		for _, record := range records {
			record.Release()
		}
		return nil, nil, errs.Wrap(err, fmt.Errorf("failed reading records from %s", filePath))
	}

	return records, schema, nil
}

// ReadParquetFileAsRecord reads every row group of the file into one record.
// A file without rows produces an empty record with the file's schema.
func ReadParquetFileAsRecord(ctx context.Context, mem *memory.GoAllocator, filePath string) (arrow.Record, error) {
	records, schema, err := ReadParquetFile(ctx, mem, filePath)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		recBuilder := array.NewRecordBuilder(mem, schema)
		defer recBuilder.Release()
		return recBuilder.NewRecord(), nil
	}

	defer func() {
		for _, record := range records {
			record.Release()
		}
	}()

	if len(records) == 1 {
		records[0].Retain()
		return records[0], nil
	}

	return ConcatenateRecords(mem, records...)
}

// ParquetFileNumRows reads the row count from the file footer.
func ParquetFileNumRows(filePath string) (int64, error) {
	parquetFileReader, err := parquetFileUtils.OpenParquetFile(filePath, false)
	if err != nil {
		return 0, errs.Wrap(err, fmt.Errorf("failed opening parquet file %s", filePath))
	}
	defer parquetFileReader.Close()

	return parquetFileReader.NumRows(), nil
}
