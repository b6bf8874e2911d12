package uow

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
)

type UnitOfWork struct {
	db *gorm.DB
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if fn == nil {
		return errors.New("tx func is required")
	}
	if _, ok := ports.TxFrom(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	// fn errors pass through unchanged. Begin and commit failures are wrapped.
	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ports.ContextWithTx(ctx, tx))
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return errs.Wrap(err, "commit transaction")
}
