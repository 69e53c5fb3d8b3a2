package ingest

import "errors"

var (
	ErrNotFound     = errors.New("raw data not found")
	ErrMissingField = errors.New("missing field")
	ErrTypeCoercion = errors.New("unable to coerce column types")
)
