package storage

import (
	"errors"
)

var (
	ErrNoRuns            = errors.New("no runs recorded")
	ErrInvalidRunRecord  = errors.New("run record is invalid")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrBucketNotProvided = errors.New("bucket name not provided")
)
