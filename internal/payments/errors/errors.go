package errors

import "errors"

var (
	ErrNotFound = errors.New("transaction not found")
)
