package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work against one store connection.
// Chat update and delete use it so the ownership check and the write
// observe the same row.
type TransactionManager interface {
	// ExecTx executes fn within a transaction; fn's error rolls back
	ExecTx(ctx context.Context, fn TxFn) error
}
