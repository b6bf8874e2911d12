package ports

import "context"

// Tx is the persistence adapter's transaction handle (*gorm.DB for the
// sqlite and postgres adapters).
type Tx any

// UnitOfWork runs fn in one transaction: an error rolls back, nil commits.
// A call made while ctx already carries a transaction joins it, so a record
// mutation and the reconciliation it triggers commit together.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func ContextWithTx(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction carried by ctx, if any.
func TxFrom(ctx context.Context) (Tx, bool) {
	tx := ctx.Value(txKey{})
	return tx, tx != nil
}
