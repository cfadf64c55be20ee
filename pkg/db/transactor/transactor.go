package transactor

import (
	"context"
)

// Transactor runs function within single unit of work
type Transactor interface {
	WithinTransaction(context.Context, func(context.Context) error) error
}

type nopTransactor struct{}

// NewNopTransactor builds Transactor which calls function directly, for datastores without transactions
func NewNopTransactor() Transactor {
	return nopTransactor{}
}

func (nopTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
