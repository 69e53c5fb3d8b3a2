package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/alekLukanen/HealthcareMLOps/arrowOps"
	"github.com/alekLukanen/HealthcareMLOps/config"
	"github.com/alekLukanen/HealthcareMLOps/ingest"
	"github.com/alekLukanen/HealthcareMLOps/storage"
	"github.com/alekLukanen/HealthcareMLOps/validation"
)

type ISnapshotPublisher interface {
	Publish(ctx context.Context, filePath string) (string, error)
	Published(ctx context.Context) ([]string, error)
}

type IRunLedger interface {
	Record(ctx context.Context, rec storage.RunRecord) error
	Latest(ctx context.Context, stage string) (storage.RunRecord, error)
	Close() error
}

// StageStatus holds the newest recorded run of a stage. LatestRun is nil when
// the stage has never been recorded.
type StageStatus struct {
	Stage     string
	LatestRun *storage.RunRecord
}

// Status is what the configured services know about past runs. Both fields
// stay empty when the matching service is not configured.
type Status struct {
	Stages             []StageStatus
	PublishedSnapshots []string
}

// Pipeline runs the ingestion and validation stages against one project
// layout. Publishing and run recording are skipped when not configured.
type Pipeline struct {
	logger    *slog.Logger
	allocator *memory.GoAllocator
	cfg       config.Config

	publisher ISnapshotPublisher
	ledger    IRunLedger
}

func NewPipeline(ctx context.Context, logger *slog.Logger, cfg config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var publisher ISnapshotPublisher
	if cfg.ObjectStorage.Enabled() {
		objectStorage, err := storage.NewObjectStorage(
			ctx, logger, storage.NewObjectStorageOptionsFromConfig(cfg.ObjectStorage),
		)
		if err != nil {
			return nil, err
		}

		snapshotPublisher, err := storage.NewSnapshotPublisher(logger, objectStorage, storage.SnapshotPublisherOptions{
			BucketName: cfg.ObjectStorage.BucketName,
			KeyPrefix:  cfg.ObjectStorage.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		publisher = snapshotPublisher
	}

	var ledger IRunLedger
	if cfg.RunLedger.Enabled() {
		ledger = storage.NewRunLedger(logger, storage.NewRunLedgerOptionsFromConfig(cfg.RunLedger))
	}

	return NewPipelineWithServices(logger, cfg, publisher, ledger), nil
}

// NewPipelineWithServices accepts nil for either service.
func NewPipelineWithServices(
	logger *slog.Logger,
	cfg config.Config,
	publisher ISnapshotPublisher,
	ledger IRunLedger,
) *Pipeline {
	return &Pipeline{
		logger:    logger,
		allocator: memory.NewGoAllocator(),
		cfg:       cfg,
		publisher: publisher,
		ledger:    ledger,
	}
}

func (obj *Pipeline) Paths() config.Paths {
	return obj.cfg.Paths
}

func (obj *Pipeline) RunIngestion(ctx context.Context) (string, error) {
	outPath, err := ingest.RunIngestion(ctx, obj.logger, obj.allocator, obj.cfg.Paths)
	if err != nil {
		return "", err
	}

	if obj.ledger != nil {
		numRows, err := arrowops.ParquetFileNumRows(outPath)
		if err != nil {
			return "", err
		}
		if err := obj.ledger.Record(ctx, storage.NewRunRecord(storage.StageIngest, outPath, numRows)); err != nil {
			return "", err
		}
	}

	return outPath, nil
}

// RunValidation validates parquetPath, or the default raw snapshot when it
// is empty. The caller owns the returned record.
func (obj *Pipeline) RunValidation(ctx context.Context, parquetPath string) (arrow.Record, error) {
	validated, err := validation.RunValidation(ctx, obj.logger, obj.allocator, obj.cfg.Paths, parquetPath)
	if err != nil {
		return nil, err
	}

	outPath := obj.cfg.Paths.ValidatedSnapshotPath()
	if obj.publisher != nil {
		if _, err := obj.publisher.Publish(ctx, outPath); err != nil {
			validated.Release()
			return nil, err
		}
	}

	if obj.ledger != nil {
		rec := storage.NewRunRecord(storage.StageValidate, outPath, validated.NumRows())
		if err := obj.ledger.Record(ctx, rec); err != nil {
			validated.Release()
			return nil, err
		}
	}

	return validated, nil
}

// RunDataPipeline runs ingestion to completion and validates its output.
func (obj *Pipeline) RunDataPipeline(ctx context.Context) error {
	obj.logger.Info("running data pipeline", slog.String("rawCSV", obj.cfg.Paths.RawCSV))

	rawPath, err := obj.RunIngestion(ctx)
	if err != nil {
		return err
	}

	validated, err := obj.RunValidation(ctx, rawPath)
	if err != nil {
		return err
	}
	defer validated.Release()

	obj.logger.Info(
		"data pipeline finished",
		slog.String("path", obj.cfg.Paths.ValidatedSnapshotPath()),
		slog.Int64("numRows", validated.NumRows()),
	)
	return nil
}

func (obj *Pipeline) Status(ctx context.Context) (Status, error) {
	status := Status{
		Stages:             make([]StageStatus, 0),
		PublishedSnapshots: make([]string, 0),
	}

	if obj.ledger != nil {
		for _, stage := range []string{storage.StageIngest, storage.StageValidate} {
			rec, err := obj.ledger.Latest(ctx, stage)
			if errors.Is(err, storage.ErrNoRuns) {
				status.Stages = append(status.Stages, StageStatus{Stage: stage})
				continue
			} else if err != nil {
				return Status{}, err
			}
			status.Stages = append(status.Stages, StageStatus{Stage: stage, LatestRun: &rec})
		}
	}

	if obj.publisher != nil {
		keys, err := obj.publisher.Published(ctx)
		if err != nil {
			return Status{}, err
		}
		status.PublishedSnapshots = keys
	}

	return status, nil
}

func (obj *Pipeline) Close() error {
	if obj.ledger == nil {
		return nil
	}
	if err := obj.ledger.Close(); err != nil {
		return errs.Wrap(err, errors.New("failed closing run ledger"))
	}
	return nil
}
