package advisor

import (
	"context"
	"errors"

	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// Executor runs generated queries against the store. Anything that is not a
// single read-only statement is rejected before it reaches the store.
type Executor struct {
	store store.Querier
}

func NewExecutor(q store.Querier) *Executor {
	return &Executor{store: q}
}

// Execute returns the result set or a *store.QueryError.
func (e *Executor) Execute(ctx context.Context, query string) (*store.ResultSet, error) {
	if err := store.ValidateReadOnly(query); err != nil {
		return nil, &store.QueryError{Query: query, Err: err}
	}

	rs, err := e.store.Query(ctx, query)
	if err != nil {
		var qe *store.QueryError
		if errors.As(err, &qe) {
			return nil, err
		}
		return nil, &store.QueryError{Query: query, Err: err}
	}
	return rs, nil
}
