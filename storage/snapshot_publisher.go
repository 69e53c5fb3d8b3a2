package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alekLukanen/errs"
)

type SnapshotPublisherOptions struct {
	BucketName string
	KeyPrefix  string
}

// SnapshotPublisher copies local parquet snapshots into object storage under
// <prefix>/processed/<file name>.
type SnapshotPublisher struct {
	logger *slog.Logger

	objectStorage IObjectStorage

	bucketName string
	keyPrefix  string
}

func NewSnapshotPublisher(
	logger *slog.Logger,
	objectStorage IObjectStorage,
	options SnapshotPublisherOptions,
) (*SnapshotPublisher, error) {
	if options.BucketName == "" {
		return nil, ErrBucketNotProvided
	}
	return &SnapshotPublisher{
		logger:        logger,
		objectStorage: objectStorage,
		bucketName:    options.BucketName,
		keyPrefix:     strings.Trim(options.KeyPrefix, "/"),
	}, nil
}

func (obj *SnapshotPublisher) SnapshotKey(filePath string) string {
	return path.Join(obj.keyPrefix, "processed", filepath.Base(filePath))
}

func (obj *SnapshotPublisher) Publish(ctx context.Context, filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w| %s", ErrSnapshotNotFound, filePath)
		}
		return "", errs.Wrap(err, fmt.Errorf("failed checking snapshot %s", filePath))
	}

	key := obj.SnapshotKey(filePath)
	if err := obj.objectStorage.UploadFile(ctx, obj.bucketName, key, filePath); err != nil {
		return "", err
	}

	obj.logger.Info(
		"published snapshot",
		slog.String("bucket", obj.bucketName),
		slog.String("key", key),
		slog.String("path", filePath),
	)
	return key, nil
}

// Published lists the snapshot keys currently in the bucket.
func (obj *SnapshotPublisher) Published(ctx context.Context) ([]string, error) {
	return obj.objectStorage.ListObjects(ctx, obj.bucketName, path.Join(obj.keyPrefix, "processed")+"/")
}
