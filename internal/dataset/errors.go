package dataset

import (
	"errors"
	"fmt"
)

// ErrMissingColumn marks a source that lacks a mandatory column.
var ErrMissingColumn = errors.New("mandatory column missing")

// DataAccessError reports a source that cannot be read or is structurally
// incompatible. Malformed individual values never produce one.
type DataAccessError struct {
	Path   string
	Column string
	Err    error
}

func (e *DataAccessError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("data access %s: column %q: %v", e.Path, e.Column, e.Err)
	}
	return fmt.Sprintf("data access %s: %v", e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}
