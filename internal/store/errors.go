package store

import (
	"errors"
	"fmt"
)

// ErrNotReadOnly is returned when a query is not a single read-only statement.
var ErrNotReadOnly = errors.New("query is not read-only")

// QueryError reports that the store rejected or failed to run a query.
// Queries are never retried and never partially applied.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
