package elements

import "errors"

var (
	ErrTableInvalid    = errors.New("table invalid")
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")
)
