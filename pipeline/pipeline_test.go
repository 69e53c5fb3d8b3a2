package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	arrowops "github.com/alekLukanen/HealthcareMLOps/arrowOps"
	"github.com/alekLukanen/HealthcareMLOps/config"
	"github.com/alekLukanen/HealthcareMLOps/elements"
	"github.com/alekLukanen/HealthcareMLOps/features"
	"github.com/alekLukanen/HealthcareMLOps/ingest"
	"github.com/alekLukanen/HealthcareMLOps/storage"
	"github.com/alekLukanen/HealthcareMLOps/validation"
)

type MockSnapshotPublisher struct {
	mock.Mock
}

func (obj *MockSnapshotPublisher) Publish(ctx context.Context, filePath string) (string, error) {
	ret := obj.Called(ctx, filePath)
	return ret.String(0), ret.Error(1)
}

func (obj *MockSnapshotPublisher) Published(ctx context.Context) ([]string, error) {
	ret := obj.Called(ctx)
	return ret.Get(0).([]string), ret.Error(1)
}

type MockRunLedger struct {
	mock.Mock
}

func (obj *MockRunLedger) Record(ctx context.Context, rec storage.RunRecord) error {
	ret := obj.Called(ctx, rec)
	return ret.Error(0)
}

func (obj *MockRunLedger) Latest(ctx context.Context, stage string) (storage.RunRecord, error) {
	ret := obj.Called(ctx, stage)
	return ret.Get(0).(storage.RunRecord), ret.Error(1)
}

func (obj *MockRunLedger) Close() error {
	ret := obj.Called()
	return ret.Error(0)
}

const commonColdCSV = `Patient_ID,Age,Gender,Symptoms,Symptom_Count,Disease
1,34,Male,"cough,fever",2,Common Cold
2,67,Female,"chest pain,fatigue",2,Heart Disease
`

func testLogger() *slog.Logger {
	return slog.New(
		slog.NewJSONHandler(
			os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug},
		),
	)
}

func projectConfig(t *testing.T, csvContent string) config.Config {
	t.Helper()
	cfg := config.Default(t.TempDir())
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.RawCSV), 0o755); err != nil {
		t.Fatalf("os.MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.RawCSV, []byte(csvContent), 0o644); err != nil {
		t.Fatalf("os.WriteFile failed: %v", err)
	}
	return cfg
}

func stageRecord(stage string, numRows int64) interface{} {
	return mock.MatchedBy(func(rec storage.RunRecord) bool {
		return rec.Stage == stage && rec.NumRows == numRows && rec.RunID != ""
	})
}

func TestRunDataPipeline(t *testing.T) {
	ctx := context.Background()
	cfg := projectConfig(t, commonColdCSV)

	p, err := NewPipeline(ctx, testLogger(), cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Close()

	if err := p.RunDataPipeline(ctx); err != nil {
		t.Fatalf("RunDataPipeline failed: %v", err)
	}

	mem := memory.NewGoAllocator()
	raw, err := arrowops.ReadParquetFileAsRecord(ctx, mem, cfg.Paths.RawSnapshotPath())
	if err != nil {
		t.Fatalf("reading raw snapshot failed: %v", err)
	}
	defer raw.Release()
	assert.Equal(t, elements.NewHealthcareRawTable().ColumnNames(), recordColumnNames(raw.Schema()))

	validated, err := arrowops.ReadParquetFileAsRecord(ctx, mem, cfg.Paths.ValidatedSnapshotPath())
	if err != nil {
		t.Fatalf("reading validated snapshot failed: %v", err)
	}
	defer validated.Release()

	assert.Equal(t, int64(2), validated.NumRows())
	groupIdx := validated.Schema().FieldIndices(elements.ColumnDiseaseGroup)
	if !assert.Len(t, groupIdx, 1) {
		return
	}
	groups := validated.Column(groupIdx[0]).(*array.String)
	assert.Equal(t, features.GroupRespiratoryAllergy, groups.Value(0))
	assert.Equal(t, features.GroupCardioMetabolic, groups.Value(1))
	assert.True(t, validated.Schema().HasField(elements.ColumnDisease))
}

func recordColumnNames(schema *arrow.Schema) []string {
	names := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
	}
	return names
}

func TestRunDataPipelinePublishesAndRecords(t *testing.T) {
	ctx := context.Background()
	cfg := projectConfig(t, commonColdCSV)

	publisher := new(MockSnapshotPublisher)
	ledger := new(MockRunLedger)
	p := NewPipelineWithServices(testLogger(), cfg, publisher, ledger)

	publisher.On("Publish", ctx, cfg.Paths.ValidatedSnapshotPath()).
		Return("healthcare/processed/healthcare_validated.parquet", nil).Once()
	ledger.On("Record", ctx, stageRecord(storage.StageIngest, 2)).Return(nil).Once()
	ledger.On("Record", ctx, stageRecord(storage.StageValidate, 2)).Return(nil).Once()
	ledger.On("Close").Return(nil).Once()

	if err := p.RunDataPipeline(ctx); err != nil {
		t.Fatalf("RunDataPipeline failed: %v", err)
	}
	assert.Nil(t, p.Close())

	publisher.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestRunDataPipelineUnknownDisease(t *testing.T) {
	ctx := context.Background()
	cfg := projectConfig(t, commonColdCSV+"3,45,Other,rash,1,Unknown Illness\n")

	publisher := new(MockSnapshotPublisher)
	ledger := new(MockRunLedger)
	p := NewPipelineWithServices(testLogger(), cfg, publisher, ledger)

	ledger.On("Record", ctx, stageRecord(storage.StageIngest, 3)).Return(nil).Once()

	err := p.RunDataPipeline(ctx)
	if !errors.Is(err, features.ErrUnmappedValue) {
		t.Fatalf("expected ErrUnmappedValue, got %v", err)
	}

	_, statErr := os.Stat(cfg.Paths.RawSnapshotPath())
	assert.Nil(t, statErr, "raw snapshot is kept")
	_, statErr = os.Stat(cfg.Paths.ValidatedSnapshotPath())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	ledger.AssertExpectations(t)
}

func TestRunValidationPublishFailure(t *testing.T) {
	ctx := context.Background()
	cfg := projectConfig(t, commonColdCSV)
	publishErr := errors.New("access denied")

	publisher := new(MockSnapshotPublisher)
	ledger := new(MockRunLedger)
	p := NewPipelineWithServices(testLogger(), cfg, publisher, ledger)

	ledger.On("Record", ctx, stageRecord(storage.StageIngest, 2)).Return(nil).Once()
	publisher.On("Publish", ctx, cfg.Paths.ValidatedSnapshotPath()).Return("", publishErr).Once()

	if _, err := p.RunIngestion(ctx); err != nil {
		t.Fatalf("RunIngestion failed: %v", err)
	}

	_, err := p.RunValidation(ctx, "")
	assert.ErrorIs(t, err, publishErr)
	ledger.AssertNotCalled(t, "Record", ctx, stageRecord(storage.StageValidate, 2))
}

func TestRunValidationWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())
	p := NewPipelineWithServices(testLogger(), cfg, nil, nil)

	_, err := p.RunValidation(ctx, "")
	if !errors.Is(err, validation.ErrNotFound) {
		t.Fatalf("expected validation.ErrNotFound, got %v", err)
	}
}

func TestNewPipelineRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.LogLevel = "loud"

	_, err := NewPipeline(context.Background(), testLogger(), cfg)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected config.ErrInvalidConfig, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())

	publisher := new(MockSnapshotPublisher)
	ledger := new(MockRunLedger)
	p := NewPipelineWithServices(testLogger(), cfg, publisher, ledger)

	ingestRun := storage.NewRunRecord(storage.StageIngest, cfg.Paths.RawSnapshotPath(), 12)
	ledger.On("Latest", ctx, storage.StageIngest).Return(ingestRun, nil).Once()
	ledger.On("Latest", ctx, storage.StageValidate).
		Return(storage.RunRecord{}, fmt.Errorf("%w| stage %s", storage.ErrNoRuns, storage.StageValidate)).Once()
	publisher.On("Published", ctx).
		Return([]string{"healthcare/processed/healthcare_validated.parquet"}, nil).Once()

	status, err := p.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if assert.Len(t, status.Stages, 2) {
		assert.Equal(t, storage.StageIngest, status.Stages[0].Stage)
		if assert.NotNil(t, status.Stages[0].LatestRun) {
			assert.Equal(t, ingestRun.RunID, status.Stages[0].LatestRun.RunID)
			assert.Equal(t, int64(12), status.Stages[0].LatestRun.NumRows)
		}
		assert.Equal(t, storage.StageValidate, status.Stages[1].Stage)
		assert.Nil(t, status.Stages[1].LatestRun)
	}
	assert.Equal(t, []string{"healthcare/processed/healthcare_validated.parquet"}, status.PublishedSnapshots)

	publisher.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestStatusLedgerFailure(t *testing.T) {
	ctx := context.Background()
	ledgerErr := errors.New("connection refused")

	publisher := new(MockSnapshotPublisher)
	ledger := new(MockRunLedger)
	p := NewPipelineWithServices(testLogger(), config.Default(t.TempDir()), publisher, ledger)

	ledger.On("Latest", ctx, storage.StageIngest).Return(storage.RunRecord{}, ledgerErr).Once()

	_, err := p.Status(ctx)
	assert.ErrorIs(t, err, ledgerErr)
	publisher.AssertNotCalled(t, "Published", mock.Anything)
}

func TestStatusWithoutServices(t *testing.T) {
	p := NewPipelineWithServices(testLogger(), config.Default(t.TempDir()), nil, nil)

	status, err := p.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	assert.Empty(t, status.Stages)
	assert.Empty(t, status.PublishedSnapshots)
}

func TestErrorCategories(t *testing.T) {
	const header = "Patient_ID,Age,Gender,Symptoms,Symptom_Count,Disease\n"

	runIngestion := func(ctx context.Context, p *Pipeline) error {
		_, err := p.RunIngestion(ctx)
		return err
	}
	runValidation := func(ctx context.Context, p *Pipeline) error {
		validated, err := p.RunValidation(ctx, "")
		if err == nil {
			validated.Release()
		}
		return err
	}
	runPipeline := func(ctx context.Context, p *Pipeline) error {
		return p.RunDataPipeline(ctx)
	}

	testCases := []struct {
		name       string
		csvContent *string
		run        func(context.Context, *Pipeline) error
		is         error
		as         interface{}
	}{
		{
			name: "raw csv missing",
			run:  runIngestion,
			is:   ingest.ErrNotFound,
		},
		{
			name:       "empty csv",
			csvContent: ptr(""),
			run:        runIngestion,
			is:         ingest.ErrMissingField,
		},
		{
			name:       "missing disease column",
			csvContent: ptr("Patient_ID,Age,Gender,Symptoms,Symptom_Count\n1,34,Male,cough,1\n"),
			run:        runIngestion,
			is:         ingest.ErrMissingField,
		},
		{
			name:       "age is not an integer",
			csvContent: ptr(header + "1,abc,Male,cough,1,Asthma\n"),
			run:        runIngestion,
			is:         ingest.ErrTypeCoercion,
		},
		{
			name:       "empty age",
			csvContent: ptr(header + "1,,Male,cough,1,Asthma\n"),
			run:        runIngestion,
			is:         ingest.ErrTypeCoercion,
		},
		{
			name: "raw snapshot missing",
			run:  runValidation,
			is:   validation.ErrNotFound,
		},
		{
			name:       "unknown disease",
			csvContent: ptr(header + "1,34,Male,cough,1,Space Flu\n"),
			run:        runPipeline,
			is:         features.ErrUnmappedValue,
			as:         new(*features.UnmappedValuesError),
		},
		{
			name:       "age out of range",
			csvContent: ptr(header + "1,200,Male,cough,1,Asthma\n"),
			run:        runPipeline,
			is:         validation.ErrSchemaViolation,
			as:         new(*validation.SchemaError),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			var cfg config.Config
			if tc.csvContent != nil {
				cfg = projectConfig(t, *tc.csvContent)
			} else {
				cfg = config.Default(t.TempDir())
			}
			p := NewPipelineWithServices(testLogger(), cfg, nil, nil)

			err := tc.run(ctx, p)
			assert.ErrorIs(t, err, tc.is)
			if tc.as != nil {
				assert.ErrorAs(t, err, tc.as)
			}
		})
	}
}

func ptr(value string) *string {
	return &value
}
