package contract

import "context"

// TxManager runs fn inside a database transaction. Repositories called with
// the ctx that fn receives join the same transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
