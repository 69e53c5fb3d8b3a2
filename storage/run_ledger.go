package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alekLukanen/errs"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/alekLukanen/HealthcareMLOps/config"
)

type RunLedgerOptions struct {
	Address    string
	Password   string
	KeyPrefix  string
	MaxEntries int64
}

func NewRunLedgerOptionsFromConfig(cfg config.RunLedgerConfig) RunLedgerOptions {
	return RunLedgerOptions{
		Address:    cfg.Address,
		Password:   cfg.Password,
		KeyPrefix:  cfg.KeyPrefix,
		MaxEntries: cfg.MaxEntries,
	}
}

// RunLedger keeps the most recent run records of each stage in a redis list,
// newest first.
type RunLedger struct {
	logger *slog.Logger
	client *goredislib.Client

	keyPrefix  string
	maxEntries int64
}

func NewRunLedger(logger *slog.Logger, options RunLedgerOptions) *RunLedger {
	client := goredislib.NewClient(&goredislib.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       0,
	})
	return NewRunLedgerWithClient(logger, client, options)
}

func NewRunLedgerWithClient(logger *slog.Logger, client *goredislib.Client, options RunLedgerOptions) *RunLedger {
	maxEntries := options.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &RunLedger{
		logger:     logger,
		client:     client,
		keyPrefix:  options.KeyPrefix,
		maxEntries: maxEntries,
	}
}

func (obj *RunLedger) StageKey(stage string) string {
	return fmt.Sprintf("%s/pipeline-runs/%s", obj.keyPrefix, stage)
}

func (obj *RunLedger) DerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Second*15)
}

func (obj *RunLedger) Record(ctx context.Context, rec RunRecord) error {
	data, err := rec.ToBytes()
	if err != nil {
		return err
	}

	ctx, cancelFunc := obj.DerCtx(ctx)
	defer cancelFunc()

	key := obj.StageKey(rec.Stage)
	if err := obj.client.LPush(ctx, key, data).Err(); err != nil {
		return errs.Wrap(err, fmt.Errorf("failed pushing run %s onto %s", rec.RunID, key))
	}
	if err := obj.client.LTrim(ctx, key, 0, obj.maxEntries-1).Err(); err != nil {
		return errs.Wrap(err, fmt.Errorf("failed trimming %s", key))
	}

	obj.logger.Info(
		"recorded run",
		slog.String("stage", rec.Stage),
		slog.String("runID", rec.RunID),
		slog.Int64("numRows", rec.NumRows),
	)
	return nil
}

func (obj *RunLedger) Latest(ctx context.Context, stage string) (RunRecord, error) {
	ctx, cancelFunc := obj.DerCtx(ctx)
	defer cancelFunc()

	key := obj.StageKey(stage)
	data, err := obj.client.LIndex(ctx, key, 0).Bytes()
	if errors.Is(err, goredislib.Nil) {
		return RunRecord{}, fmt.Errorf("%w| stage %s", ErrNoRuns, stage)
	} else if err != nil {
		return RunRecord{}, errs.Wrap(err, fmt.Errorf("failed reading latest run from %s", key))
	}

	return NewRunRecordFromBytes(data)
}

func (obj *RunLedger) Close() error {
	return obj.client.Close()
}
